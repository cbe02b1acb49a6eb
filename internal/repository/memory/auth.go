package memory

import (
	"context"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/auth"
)

type authTokenRepository struct {
	s *Store
}

func NewAuthTokenRepository(s *Store) auth.TokenRepository {
	return &authTokenRepository{s: s}
}

func (r *authTokenRepository) CreateRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.CreatedAt = r.s.now()
	r.s.refreshTokens[token.TokenHash] = token
	return nil
}

func (r *authTokenRepository) IsRefreshTokenRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.refreshTokens[tokenHash]
	if !ok {
		return true, nil
	}
	return t.RevokedAt != nil || !now.Before(t.ExpiresAt), nil
}

func (r *authTokenRepository) RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.refreshTokens[tokenHash]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	ts := at
	t.RevokedAt = &ts
	r.s.refreshTokens[tokenHash] = t
	return nil
}

func (r *authTokenRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for hash, t := range r.s.refreshTokens {
		if t.UserID == userID && t.RevokedAt == nil {
			ts := at
			t.RevokedAt = &ts
			r.s.refreshTokens[hash] = t
		}
	}
	return nil
}

func (r *authTokenRepository) CreatePasswordReset(ctx context.Context, reset auth.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reset.CreatedAt = r.s.now()
	r.s.resets[reset.TokenHash] = reset
	return nil
}

func (r *authTokenRepository) ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reset, ok := r.s.resets[tokenHash]
	if !ok || reset.UsedAt != nil || !now.Before(reset.ExpiresAt) {
		return "", auth.ErrInvalidToken
	}
	ts := now
	reset.UsedAt = &ts
	r.s.resets[tokenHash] = reset
	return reset.UserID, nil
}
