package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
)

type authTokenRepositoryImpl struct {
	db *database.DB
}

func NewAuthTokenRepository(db *database.DB) auth.TokenRepository {
	return &authTokenRepositoryImpl{db: db}
}

// CreateRefreshToken implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) CreateRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, user_agent, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		token.TokenHash, token.UserID, token.ExpiresAt, token.UserAgent, token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// IsRefreshTokenRevoked implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) IsRefreshTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var live bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM refresh_tokens
			WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
		)`,
		tokenHash, now,
	).Scan(&live)
	if err != nil {
		return true, err
	}
	return !live, nil
}

// RevokeRefreshToken implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`, tokenHash, at)
	return err
}

// RevokeAllForUser implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`, userID, at)
	return err
}

// CreatePasswordReset implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) CreatePasswordReset(ctx context.Context, reset auth.PasswordReset) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO password_resets (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())`,
		reset.TokenHash, reset.UserID, reset.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("store password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset implements auth.TokenRepository.
func (r *authTokenRepositoryImpl) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	q := GetQuerier(ctx, r.db)

	var userID string
	err := q.QueryRow(ctx, `
		UPDATE password_resets
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id`,
		tokenHash, now,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", auth.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
