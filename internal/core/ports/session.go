package ports

import (
	"context"

	"github.com/authlab/members/internal/core/domain"
)

// SessionStore persists sessions until their ExpiresAt. Get returns
// domain.ErrSessionNotFound for unknown ids; Delete of an unknown id is a no-op.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionService issues, resolves and destroys browser sessions. Tokens are
// the opaque cookie values handed to browsers.
type SessionService interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Establish(ctx context.Context, name string) (*domain.Session, string, error)
	Destroy(ctx context.Context, session *domain.Session) error
}
