package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/user"
	"github.com/fruverhq/fruver-pos/internal/user/dto"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type userUseCase struct {
	repo   user.Repository
	logger logger.Logger
}

func NewUserUseCase(repo user.Repository, log logger.Logger) user.UseCase {
	return &userUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperr.Validationf("email is required")
	}
	if len(input.Password) < minPasswordLen {
		return nil, apperr.Validationf("password must be at least %d characters", minPasswordLen)
	}
	if !input.Role.Valid() {
		return nil, apperr.Validationf("invalid role %q", input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		if err == user.ErrEmailTaken {
			return nil, apperr.Validationf("email already in use")
		}
		return nil, apperr.Internal("create user", err)
	}
	return u, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	items, err := uc.repo.FindAllActive(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return items, nil
}

func (uc *userUseCase) UpdateUser(ctx context.Context, input *dto.UpdateUserInput) (*model.User, error) {
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if !input.Role.Valid() {
		return nil, apperr.Validationf("invalid role %q", input.Role)
	}

	u, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.Internal("update user", err)
	}
	if u == nil {
		return nil, apperr.NotFoundf("user")
	}

	u.Name = input.Name
	u.Role = input.Role
	u.IsActive = input.IsActive
	if input.Password != "" {
		if len(input.Password) < minPasswordLen {
			return nil, apperr.Validationf("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("hash password", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	return u, nil
}

func (uc *userUseCase) DeactivateUser(ctx context.Context, id string) error {
	ok, err := uc.repo.Deactivate(ctx, id)
	if err != nil {
		return apperr.Internal("deactivate user", err)
	}
	if !ok {
		return apperr.NotFoundf("user")
	}
	return nil
}
