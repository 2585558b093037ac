package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials is the single authentication failure. Unknown email,
// duplicated email and wrong password all surface as this error so callers
// cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid email/password combination")

var ErrSessionNotFound = errors.New("session not found")
var ErrInvalidSession = errors.New("invalid session token")

// Violation rules produced by the input validator.
const (
	RuleRequired     = "required"
	RuleAlphanumeric = "alphanum"
	RuleEmail        = "email"
	RuleEmailDomain  = "email_domain"
	RuleMax          = "maxlen"
	RuleString       = "string"
)

// Violation describes one field that failed validation.
type Violation struct {
	Field string
	Rule  string
	Param string
}

func (v Violation) String() string {
	if v.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", v.Field, v.Rule, v.Param)
	}
	return fmt.Sprintf("%s failed %s", v.Field, v.Rule)
}

// ValidationError reports malformed, oversized or wrongly typed input.
// Violations keep the order in which fields were declared.
type ValidationError struct {
	Violations []Violation
}

func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the first violated field, or a zero Violation when empty.
func (e *ValidationError) First() Violation {
	if e == nil || len(e.Violations) == 0 {
		return Violation{}
	}
	return e.Violations[0]
}
