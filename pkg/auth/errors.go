package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = errors.New("missing credentials")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// classifyParseError collapses jwt parse failures into the three token errors
// surfaced to callers.
func classifyParseError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
