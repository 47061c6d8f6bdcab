package auth

import (
	"context"
	"strings"
	"time"

	"github.com/fruverhq/fruver-pos/internal/apperr"
	"github.com/fruverhq/fruver-pos/internal/audit"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/fruverhq/fruver-pos/internal/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every login failure mode so the
// response never leaks whether the email exists.
var ErrInvalidCredentials = apperr.Validationf("invalid credentials")

type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type UseCase interface {
	Login(ctx context.Context, input *LoginInput) (*LoginResult, error)
}

type authUseCase struct {
	users  user.Repository
	tokens *TokenManager
	sink   audit.Sink
	logger logger.Logger
}

func NewAuthUseCase(users user.Repository, tokens *TokenManager, sink audit.Sink, log logger.Logger) UseCase {
	return &authUseCase{
		users:  users,
		tokens: tokens,
		sink:   sink,
		logger: log,
	}
}

func (uc *authUseCase) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("login", err)
	}
	if u == nil {
		uc.recordFailure(ctx, email, input.ClientIP, "USER_NOT_FOUND")
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		uc.recordFailure(ctx, email, input.ClientIP, "USER_INACTIVE")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		uc.recordFailure(ctx, email, input.ClientIP, "BAD_PASSWORD")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := uc.tokens.Sign(u)
	if err != nil {
		return nil, apperr.Internal("login", err)
	}

	uc.sink.Record(ctx, audit.Event{
		ActorID:    &u.ID,
		ActorEmail: u.Email,
		Action:     "LOGIN",
		Entity:     "user",
		EntityID:   u.ID,
		IP:         input.ClientIP,
	})
	uc.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("email", u.Email))

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (uc *authUseCase) recordFailure(ctx context.Context, email, ip, reason string) {
	uc.sink.Record(ctx, audit.Event{
		ActorEmail: email,
		Action:     "LOGIN_FAILED",
		Entity:     "user",
		Metadata:   map[string]interface{}{"reason": reason},
		IP:         ip,
	})
	uc.logger.Warn("login failed", zap.String("email", email), zap.String("reason", reason))
}
