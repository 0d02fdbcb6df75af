package token

import "errors"

// Token verification errors
var (
	// ErrMalformed indicates that the token cannot be parsed
	ErrMalformed = errors.New("token is malformed")

	// ErrInvalidSignature indicates that the token was not signed with the expected secret
	ErrInvalidSignature = errors.New("token signature is invalid")

	// ErrExpired indicates that the token is past its expiry
	ErrExpired = errors.New("token is expired")

	// ErrWrongClass indicates that an access token was presented where a refresh token is expected, or vice versa
	ErrWrongClass = errors.New("token has wrong class")
)
