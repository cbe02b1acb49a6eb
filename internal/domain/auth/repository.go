package auth

import (
	"context"
	"time"
)

type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token RefreshToken) error
	// IsRefreshTokenRevoked reports true for unknown, revoked or expired tokens.
	IsRefreshTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) error
	CreatePasswordReset(ctx context.Context, reset PasswordReset) error
	// ConsumePasswordReset marks a live reset as used and returns its user.
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error)
}
