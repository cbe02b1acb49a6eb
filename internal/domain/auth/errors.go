package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
	ErrOAuthAccountNotFound = errors.New("no account is registered for this google email")
	ErrOAuthAccountMismatch = errors.New("google account does not match the registered one")
	ErrCompanyCodeRequired  = errors.New("company code is required")
	ErrCompanyInactive      = errors.New("company is inactive")
)
