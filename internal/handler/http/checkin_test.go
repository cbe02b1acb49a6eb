package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
)

func TestCheckInHandler_Terminal(t *testing.T) {
	env := newTestEnv(t)
	issued := env.issueToken(t)

	rec := env.terminalCheckIn(t, issued.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorded := decode[checkin.CheckInResponse](t, rec).Data
	assert.Equal(t, env.employee.ID, recorded.UserID)
	assert.Equal(t, env.gym.ID, recorded.PartnerID)
	assert.Equal(t, "Iron Gym", recorded.PartnerName)
	assert.Equal(t, issued.TokenID, recorded.QRToken)

	t.Run("token is single use", func(t *testing.T) {
		rec := env.terminalCheckIn(t, issued.Token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("cooldown at the same partner", func(t *testing.T) {
		next := env.issueToken(t)
		rec := env.terminalCheckIn(t, next.Token)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "COOLDOWN_ACTIVE", decode[any](t, rec).Error.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		rec := env.terminalCheckIn(t, issued.Token+"x")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.terminalCheckIn(t, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestCheckInHandler_TerminalCredentials(t *testing.T) {
	env := newTestEnv(t)
	issued := env.issueToken(t)

	tests := []struct {
		name string
		opts []requestOption
	}{
		{"no headers", nil},
		{"wrong key", []requestOption{
			withHeader(middleware.HeaderPartnerID, env.gym.ID),
			withHeader(middleware.HeaderTerminalKey, "not-the-key"),
		}},
		{"unknown partner", []requestOption{
			withHeader(middleware.HeaderPartnerID, "missing"),
			withHeader(middleware.HeaderTerminalKey, env.gymKey),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/terminal/checkins", checkin.TerminalCheckInRequest{Token: issued.Token}, tt.opts...)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	// The token survives rejected attempts.
	assert.Equal(t, http.StatusCreated, env.terminalCheckIn(t, issued.Token).Code)
}

func TestCheckInHandler_Manual(t *testing.T) {
	env := newTestEnv(t)
	issued := env.issueToken(t)
	admin := withBearer(env.tokenFor(t, env.root))

	rec := env.do(t, http.MethodPost, "/api/v1/admin/checkins", checkin.RecordCheckInRequest{
		UserID:    env.hr.ID,
		PartnerID: env.gym.ID,
		Token:     issued.Token,
	}, admin)
	assert.Equal(t, http.StatusForbidden, rec.Code, "token of another user")

	rec = env.do(t, http.MethodPost, "/api/v1/admin/checkins", checkin.RecordCheckInRequest{
		UserID:    env.employee.ID,
		PartnerID: env.gym.ID,
		Token:     issued.Token,
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, issued.TokenID, decode[checkin.CheckInResponse](t, rec).Data.QRToken)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/checkins", checkin.RecordCheckInRequest{
		PartnerID: env.gym.ID,
		Token:     issued.Token,
	}, withBearer(env.tokenFor(t, env.hr)))
	assert.Equal(t, http.StatusForbidden, rec.Code, "company admins cannot record")
}
