package qrsign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s := NewSigner("qr-secret").WithClock(func() time.Time { return now.Add(time.Minute) })

	token, err := s.Sign("QR-01ABC", "user-1", now, now.Add(5*time.Minute))
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "QR-01ABC", claims.ID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, now.Add(5*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestSigner_Expired(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s := NewSigner("qr-secret").WithClock(func() time.Time { return now.Add(10 * time.Minute) })

	token, err := s.Sign("QR-01ABC", "user-1", now, now.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSigner_WrongKey(t *testing.T) {
	now := time.Now()
	token, err := NewSigner("one").Sign("QR-1", "user-1", now, now.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = NewSigner("two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_Garbage(t *testing.T) {
	s := NewSigner("qr-secret")
	for _, input := range []string{"", "   ", "QR-not-a-jwt", "a.b.c"} {
		_, err := s.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, input)
	}
}

func TestSigner_RejectsBadInput(t *testing.T) {
	s := NewSigner("qr-secret")
	now := time.Now()
	_, err := s.Sign("", "user-1", now, now.Add(time.Minute))
	assert.Error(t, err)
	_, err = s.Sign("QR-1", "user-1", now, now)
	assert.Error(t, err)
}
