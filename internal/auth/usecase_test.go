package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fruverhq/fruver-pos/internal/audit"
	"github.com/fruverhq/fruver-pos/internal/logger"
	"github.com/fruverhq/fruver-pos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func (r *fakeUserRepo) Create(context.Context, *model.User) error { return nil }
func (r *fakeUserRepo) FindByID(context.Context, string) (*model.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.byEmail[email], nil
}
func (r *fakeUserRepo) FindAllActive(context.Context) ([]model.User, error) { return nil, nil }
func (r *fakeUserRepo) Update(context.Context, *model.User) error           { return nil }
func (r *fakeUserRepo) Deactivate(context.Context, string) (bool, error)    { return false, nil }

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *captureSink) Record(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func loginFixture(t *testing.T, active bool) (UseCase, *captureSink) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{byEmail: map[string]*model.User{
		"ana@example.com": {
			BaseModel:    model.BaseModel{ID: "u-1"},
			Email:        "ana@example.com",
			PasswordHash: string(hash),
			Role:         model.RoleCashier,
			IsActive:     active,
		},
	}}
	sink := &captureSink{}
	uc := NewAuthUseCase(repo, NewTokenManager("secret", time.Hour), sink, logger.NewNop())
	return uc, sink
}

func TestLogin_Succeeds(t *testing.T) {
	uc, sink := loginFixture(t, true)

	// Email matching is case- and whitespace-insensitive.
	out, err := uc.Login(context.Background(), &LoginInput{
		Email:    "  Ana@Example.com ",
		Password: "s3cret",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "u-1", out.User.ID)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "LOGIN", sink.events[0].Action)
	assert.Equal(t, "10.0.0.1", sink.events[0].IP)
}

func TestLogin_FailureModesAreUniform(t *testing.T) {
	cases := []struct {
		name   string
		active bool
		email  string
		pass   string
		reason string
	}{
		{"unknown user", true, "nobody@example.com", "s3cret", "USER_NOT_FOUND"},
		{"inactive user", false, "ana@example.com", "s3cret", "USER_INACTIVE"},
		{"wrong password", true, "ana@example.com", "wrong", "BAD_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, sink := loginFixture(t, tc.active)

			_, err := uc.Login(context.Background(), &LoginInput{Email: tc.email, Password: tc.pass})
			// Same error regardless of the cause.
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			require.Len(t, sink.events, 1)
			assert.Equal(t, "LOGIN_FAILED", sink.events[0].Action)
			assert.Equal(t, tc.reason, sink.events[0].Metadata["reason"])
		})
	}
}

func TestLogin_EmptyInputShortCircuits(t *testing.T) {
	uc, sink := loginFixture(t, true)

	_, err := uc.Login(context.Background(), &LoginInput{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, sink.events)
}
