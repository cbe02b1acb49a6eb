package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
)

type sseEvent struct {
	name string
	data string
}

// readEvents parses a text/event-stream body until it closes.
func readEvents(body io.Reader) <-chan sseEvent {
	ch := make(chan sseEvent, 32)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(body)
		var ev sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			case line == "":
				if ev.name != "" {
					ch <- ev
				}
				ev = sseEvent{}
			}
		}
	}()
	return ch
}

// waitFor skips events until one named name arrives.
func waitFor(t *testing.T, events <-chan sseEvent, name string) sseEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream closed before %q", name)
			if ev.name == name {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %q event within 5s", name)
		}
	}
}

func (e *testEnv) issueToken(t *testing.T) checkin.QRTokenResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/me/qr-token", nil, withBearer(e.tokenFor(t, e.employee)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[checkin.QRTokenResponse](t, rec).Data
}

func (e *testEnv) terminalCheckIn(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/terminal/checkins", checkin.TerminalCheckInRequest{Token: token},
		withHeader(middleware.HeaderPartnerID, e.gym.ID),
		withHeader(middleware.HeaderTerminalKey, e.gymKey),
	)
}

func TestMeHandler_Profile(t *testing.T) {
	env := newTestEnv(t)
	bearer := withBearer(env.tokenFor(t, env.employee))

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[user.ProfileResponse](t, rec).Data
	assert.Equal(t, env.employee.Email, profile.Email)
	require.NotNil(t, profile.CompanyName)
	assert.Equal(t, "Acme", *profile.CompanyName)
	require.NotNil(t, profile.Plan)
	assert.Equal(t, env.silver.ID, profile.Plan.ID)

	rec = env.do(t, http.MethodPatch, "/api/v1/me", user.UpdateProfileRequest{Name: "Ana Maria"}, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ana Maria", decode[user.ProfileResponse](t, rec).Data.Name)

	rec = env.do(t, http.MethodPatch, "/api/v1/me", user.UpdateProfileRequest{}, bearer)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMeHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[any](t, rec)
	assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
	assert.Equal(t, session.LoginPath, body.Error.Details["redirect"])

	rec = env.do(t, http.MethodGet, "/api/v1/me", nil, withBearer("not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeHandler_InactiveUserIsRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.employee)

	_, err := env.users.UpdateStatus(context.Background(), env.employee.ID, user.StatusInactive)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, withBearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMeHandler_IssueQRToken(t *testing.T) {
	env := newTestEnv(t)

	issued := env.issueToken(t)
	assert.True(t, strings.HasPrefix(issued.TokenID, checkin.TokenIDPrefix))
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, env.employee.ID, issued.UserID)
	assert.InDelta(t, int(checkin.TokenTTL/time.Second), issued.ExpiresInSeconds, 1)

	t.Run("admins cannot hold tokens", func(t *testing.T) {
		for _, u := range []user.User{env.hr, env.root} {
			rec := env.do(t, http.MethodPost, "/api/v1/me/qr-token", nil, withBearer(env.tokenFor(t, u)))
			assert.Equal(t, http.StatusForbidden, rec.Code, u.Role)
		}
	})

	t.Run("employee without plan", func(t *testing.T) {
		noPlan := env.createUser(t, user.User{Email: "noplan@acme.test", Name: "No Plan", Role: user.RoleEmployee, CompanyID: &env.acme.ID})
		rec := env.do(t, http.MethodPost, "/api/v1/me/qr-token", nil, withBearer(env.tokenFor(t, noPlan)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestMeHandler_QuotaAndHistory(t *testing.T) {
	env := newTestEnv(t)
	bearer := withBearer(env.tokenFor(t, env.employee))

	issued := env.issueToken(t)
	require.Equal(t, http.StatusCreated, env.terminalCheckIn(t, issued.Token).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/me/quota", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quota := decode[checkin.QuotaResponse](t, rec).Data
	assert.Equal(t, env.silver.CheckInsPerMonth, quota.Limit)
	assert.Equal(t, 1, quota.Used)
	assert.Equal(t, env.silver.CheckInsPerMonth-1, quota.Remaining)

	rec = env.do(t, http.MethodGet, "/api/v1/me/checkins", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]checkin.CheckInResponse](t, rec)
	require.Len(t, history.Data, 1)
	assert.Equal(t, env.gym.ID, history.Data[0].PartnerID)
	assert.Equal(t, issued.TokenID, history.Data[0].QRToken)
	assert.EqualValues(t, 1, history.Meta.TotalItems)
}

func TestMeHandler_DownloadPass(t *testing.T) {
	env := newTestEnv(t)
	bearer := withBearer(env.tokenFor(t, env.employee))

	rec := env.do(t, http.MethodGet, "/api/v1/me/qr-token/pass", nil, bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no live token yet")

	env.issueToken(t)
	rec = env.do(t, http.MethodGet, "/api/v1/me/qr-token/pass", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func openStream(t *testing.T, env *testEnv, srv *httptest.Server, tokenID string) <-chan sseEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/me/qr-token/stream?token_id="+tokenID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, env.employee))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return readEvents(resp.Body)
}

func TestMeHandler_StreamEndsOnConsume(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	issued := env.issueToken(t)
	events := openStream(t, env, srv, issued.TokenID)

	waitFor(t, events, "connected")
	tick := waitFor(t, events, checkin.EventTick)
	var payload tickEvent
	require.NoError(t, json.Unmarshal([]byte(tick.data), &payload))
	assert.Equal(t, issued.TokenID, payload.TokenID)
	assert.Greater(t, payload.ExpiresInSeconds, 0)

	require.Equal(t, http.StatusCreated, env.terminalCheckIn(t, issued.Token).Code)

	consumed := waitFor(t, events, checkin.EventConsumed)
	var recorded checkin.CheckInResponse
	require.NoError(t, json.Unmarshal([]byte(consumed.data), &recorded))
	assert.Equal(t, issued.TokenID, recorded.QRToken)
	assert.Equal(t, env.gym.ID, recorded.PartnerID)

	// consumed is terminal
	for range events {
	}
}

// redeemOnLookup redeems the token right after the stream has read it, so the stream
// starts from a state that is already stale.
type redeemOnLookup struct {
	checkin.CheckInService
	redeem func()
}

func (s *redeemOnLookup) GetToken(ctx context.Context, tokenID string) (checkin.Token, error) {
	token, err := s.CheckInService.GetToken(ctx, tokenID)
	if err == nil {
		s.redeem()
	}
	return token, err
}

func TestMeHandler_StreamSeesRedemptionDuringLookup(t *testing.T) {
	env := newTestEnv(t)
	issued := env.issueToken(t)

	checkins := &redeemOnLookup{CheckInService: env.checkins, redeem: func() {
		rec := env.terminalCheckIn(t, issued.Token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}}
	h := NewMeHandler(nil, checkins, env.hub)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = session.NewContext(ctx, &session.Session{UserID: env.employee.ID, Role: user.RoleEmployee, CompanyID: &env.acme.ID})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/qr-token/stream?token_id="+issued.TokenID, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	h.StreamQRToken(rec, req)

	require.NoError(t, ctx.Err(), "stream should end on the consumed event, not the deadline")
	events := readEvents(rec.Body)
	waitFor(t, events, "connected")
	ev := waitFor(t, events, checkin.EventConsumed)
	assert.Contains(t, ev.data, issued.TokenID)
}

func TestMeHandler_StreamEndsOnSupersede(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	first := env.issueToken(t)
	events := openStream(t, env, srv, first.TokenID)
	waitFor(t, events, "connected")

	second := env.issueToken(t)

	ev := waitFor(t, events, checkin.EventSuperseded)
	assert.Contains(t, ev.data, second.TokenID)
	for range events {
	}

	// A stream opened on a superseded token ends straight away.
	events = openStream(t, env, srv, first.TokenID)
	waitFor(t, events, "connected")
	waitFor(t, events, checkin.EventSuperseded)
}

func TestMeHandler_StreamExpires(t *testing.T) {
	env := newTestEnv(t)
	issued := env.issueToken(t)

	h := NewMeHandler(nil, env.checkins, env.hub).(*MeHandlerImpl)
	h.now = func() time.Time { return time.Now().Add(checkin.TokenTTL + time.Second) }
	h.tickInterval = 10 * time.Millisecond

	ctx := session.NewContext(context.Background(), &session.Session{
		UserID:    env.employee.ID,
		Email:     env.employee.Email,
		Role:      user.RoleEmployee,
		CompanyID: env.employee.CompanyID,
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/qr-token/stream?token_id="+issued.TokenID, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamQRToken(rec, req)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end on expiry")
	}

	var names []string
	var last sseEvent
	for ev := range readEvents(strings.NewReader(rec.Body.String())) {
		names = append(names, ev.name)
		last = ev
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "connected", names[0])
	assert.Equal(t, checkin.EventExpired, last.name)

	var payload expiredEvent
	require.NoError(t, json.Unmarshal([]byte(last.data), &payload))
	assert.Equal(t, issued.TokenID, payload.TokenID)
	assert.Equal(t, qrTokenPath, payload.ReissueURL)
}

func TestMeHandler_StreamValidation(t *testing.T) {
	env := newTestEnv(t)
	bearer := withBearer(env.tokenFor(t, env.employee))

	rec := env.do(t, http.MethodGet, "/api/v1/me/qr-token/stream", nil, bearer)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me/qr-token/stream?token_id=QR-unknown", nil, bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
