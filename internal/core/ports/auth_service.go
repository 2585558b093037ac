package ports

import (
	"context"

	"github.com/authlab/members/internal/core/domain"
)

// SignupInput is the already-validated signup form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the already-validated login form.
type LoginInput struct {
	Email    string
	Password string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*domain.User, error)
}

// UserDirectory answers plain equality lookups by display name.
type UserDirectory interface {
	FindByName(ctx context.Context, name string) ([]*domain.User, error)
}
