package user

import (
	"context"
	"errors"

	"github.com/fruverhq/fruver-pos/internal/model"
)

// ErrEmailTaken signals the unique email constraint fired.
var ErrEmailTaken = errors.New("email already in use")

type Repository interface {
	Create(ctx context.Context, user *model.User) error

	// FindByID / FindByEmail return nil when absent. FindByEmail includes
	// the password hash; it exists for the login path only.
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	FindAllActive(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Deactivate(ctx context.Context, id string) (bool, error)
}
