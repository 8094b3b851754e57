package auth

import "errors"

var (
	// Token decode failures, distinguished for diagnostics. All of them map
	// to 401 at the transport boundary.
	ErrEmptyToken    = errors.New("auth: no access token")
	ErrExpiredToken  = errors.New("auth: token has expired")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrInvalidClaims = errors.New("auth: invalid token claims")

	ErrUserNotFound = errors.New("auth: user not found")
	ErrUserInactive = errors.New("auth: inactive user")

	// ErrIncorrectCredentials covers both unknown email and wrong password
	// at login, so the response cannot be used to enumerate accounts.
	ErrIncorrectCredentials = errors.New("auth: incorrect email or password")
)
