package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/authlab/members/internal/core/domain"
)

const claimSessionID = "sid"

// TokenCodec signs session ids into cookie values so a browser cannot forge
// or guess another session's id. Expiry is enforced server-side, not in the token.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

func (c *TokenCodec) Encode(sessionID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{claimSessionID: sessionID})
	return t.SignedString(c.secret)
}

// Decode returns the session id carried by token, or domain.ErrInvalidSession.
func (c *TokenCodec) Decode(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidSession
	}

	sid, _ := claims[claimSessionID].(string)
	if sid == "" {
		return "", domain.ErrInvalidSession
	}
	return sid, nil
}
