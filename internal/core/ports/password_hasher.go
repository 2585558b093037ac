package ports

import "context"

// PasswordHasher turns plaintext passwords into salted one-way hashes and
// checks plaintext against a stored hash. A mismatch is (false, nil).
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) (bool, error)
}
