package user

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/user/dto"
)

type UseCase interface {
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, input *dto.UpdateUserInput) (*model.User, error)
	DeactivateUser(ctx context.Context, id string) error
}
