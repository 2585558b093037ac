package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/authlab/members/internal/core/domain"
	"github.com/authlab/members/internal/core/ports"
)

// AuthService implements signup and login against the credential store.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, log: log}
}

// Signup hashes the password and inserts a new record. Existing records with
// the same email are not checked; a second record is created.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("inserted user")
	return created, nil
}

// Login returns the stored user when exactly one record matches the email and
// the password verifies. Every other outcome is domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	users, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if len(users) != 1 {
		s.log.Debug().Int("matches", len(users)).Msg("user not found")
		return nil, domain.ErrInvalidCredentials
	}
	user := users[0]

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, in.Password)
	if err != nil {
		return nil, fmt.Errorf("login: compare password: %w", err)
	}
	if !ok {
		s.log.Debug().Str("user_id", user.ID).Msg("incorrect password")
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Debug().Str("user_id", user.ID).Msg("correct password")
	return user, nil
}

// UserDirectory performs plain equality lookups by name.
type UserDirectory struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserDirectory(repo ports.UserRepository, log zerolog.Logger) *UserDirectory {
	return &UserDirectory{repo: repo, log: log}
}

func (d *UserDirectory) FindByName(ctx context.Context, name string) ([]*domain.User, error) {
	users, err := d.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find by name: %w", err)
	}
	d.log.Debug().Str("name", name).Int("matches", len(users)).Msg("directory lookup")
	return users, nil
}
