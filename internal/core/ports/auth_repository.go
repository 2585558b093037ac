package ports

import (
	"context"

	"github.com/authlab/members/internal/core/domain"
)

// UserRepository defines the credential store. Lookups return every matching
// record; callers decide what multiple matches mean.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) ([]*domain.User, error)
	FindByName(ctx context.Context, name string) ([]*domain.User, error)
}
