package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenState(t *testing.T) {
	created := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	tok := Token{CreatedAt: created, ExpiresAt: created.Add(TokenTTL)}

	assert.Equal(t, TokenLive, tok.State(created))
	assert.Equal(t, TokenLive, tok.State(created.Add(299*time.Second)))
	assert.Equal(t, TokenExpired, tok.State(created.Add(TokenTTL)))

	superseded := created.Add(10 * time.Second)
	tok.SupersededAt = &superseded
	assert.Equal(t, TokenSuperseded, tok.State(created.Add(time.Minute)))

	consumed := created.Add(5 * time.Second)
	tok.ConsumedAt = &consumed
	assert.Equal(t, TokenConsumed, tok.State(created.Add(time.Hour)))
}
