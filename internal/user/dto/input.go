package dto

import "github.com/fruverhq/fruver-pos/internal/model"

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// UpdateUserInput: a non-empty Password re-hashes the credential; empty
// leaves it untouched.
type UpdateUserInput struct {
	ID       string
	Name     string
	Role     model.Role
	IsActive bool
	Password string
}
