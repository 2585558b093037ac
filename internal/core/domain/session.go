package domain

import "time"

// DefaultSessionLifetime is how long a login stays valid.
const DefaultSessionLifetime = time.Hour

// Session is the server-held state of one browser. A session without an ID
// is anonymous and has never been persisted.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Name          string    `json:"name"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// AnonymousSession returns the session handed to browsers that are not logged in.
func AnonymousSession() *Session {
	return &Session{}
}

// Expired reports whether the session's lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Active reports whether the session grants access to member content at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.Authenticated && now.Before(s.ExpiresAt)
}
