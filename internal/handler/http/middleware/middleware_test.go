package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func withSession(r *http.Request, s *session.Session) *http.Request {
	return r.WithContext(session.NewContext(r.Context(), s))
}

func TestAuthRequired(t *testing.T) {
	jwtSvc, err := jwt.NewJWTService("middleware-test-secret", "1h", "24h", false)
	require.NoError(t, err)

	var got *session.Session
	h := jwtauth.Verifier(jwtSvc.JWTAuth())(AuthRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("access token builds the session", func(t *testing.T) {
		companyID := "company-1"
		token, _, err := jwtSvc.GenerateAccessToken("user-1", "ana@acme.test", &companyID, user.RoleEmployee)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "user-1", got.UserID)
		assert.Equal(t, "ana@acme.test", got.Email)
		assert.Equal(t, user.RoleEmployee, got.Role)
		assert.Equal(t, "company-1", got.CompanyIDValue())
	})

	t.Run("platform admin has no company", func(t *testing.T) {
		token, _, err := jwtSvc.GenerateAccessToken("root", "root@wellpass.test", nil, user.RolePlatformAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, got.CompanyID)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
		assert.Equal(t, session.LoginPath, body.Error.Details["redirect"])
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		token, _, err := jwtSvc.GenerateRefreshToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles(user.RoleCompanyAdmin)(http.HandlerFunc(okHandler))

	tests := []struct {
		name    string
		session *session.Session
		want    int
	}{
		{name: "no session asks for login", session: nil, want: http.StatusUnauthorized},
		{name: "matching role", session: &session.Session{UserID: "u", Role: user.RoleCompanyAdmin}, want: http.StatusNoContent},
		{name: "other role", session: &session.Session{UserID: "u", Role: user.RoleEmployee}, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = withSession(req, tt.session)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("no roles allows everyone", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRoles()(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequireCompany(t *testing.T) {
	h := RequireCompany(http.HandlerFunc(okHandler))
	companyID := "c1"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), &session.Session{UserID: "u", Role: user.RoleCompanyAdmin, CompanyID: &companyID}))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), &session.Session{UserID: "u", Role: user.RoleCompanyAdmin}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/", nil), &session.Session{UserID: "u", Role: user.RolePlatformAdmin}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimiter_PerClientIP(t *testing.T) {
	l := NewRateLimiter(1, 2, false)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	h := l.Handler(http.HandlerFunc(okHandler))

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/terminal/checkins", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"), "burst exhausted")
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"), "refilled after a second")
}

func TestRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	l := NewRateLimiter(1, 2, false)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	h := l.Handler(http.HandlerFunc(okHandler))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed, "rotating X-Forwarded-For must not open new buckets")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", clientIP(req, false))
	assert.Equal(t, "203.0.113.7", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.1", clientIP(req, true), "falls back to the peer address")
}

func TestSimulatedLatency(t *testing.T) {
	t.Run("waits at least the minimum", func(t *testing.T) {
		h := SimulatedLatency(20*time.Millisecond, 30*time.Millisecond)(http.HandlerFunc(okHandler))
		start := time.Now()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("cancelled request is dropped", func(t *testing.T) {
		called := false
		h := SimulatedLatency(time.Hour, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		assert.False(t, called)
	})
}

type stubPartnerService struct {
	partner.PartnerService
	partners map[string]string
}

func (s stubPartnerService) AuthenticateTerminal(_ context.Context, partnerID, key string) (partner.Partner, error) {
	want, ok := s.partners[partnerID]
	if !ok || want != key {
		return partner.Partner{}, partner.ErrInvalidTerminalKey
	}
	return partner.Partner{ID: partnerID, Name: "Iron Gym", Status: partner.StatusApproved}, nil
}

func TestTerminalAuth(t *testing.T) {
	svc := stubPartnerService{partners: map[string]string{"p1": "secret-key"}}

	var got partner.Partner
	h := TerminalAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = TerminalPartner(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(partnerID, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/terminal/checkins", nil)
		if partnerID != "" {
			req.Header.Set(HeaderPartnerID, partnerID)
		}
		if key != "" {
			req.Header.Set(HeaderTerminalKey, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("p1", "secret-key"))
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, http.StatusUnauthorized, call("p1", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, call("", "secret-key"))
	assert.Equal(t, http.StatusUnauthorized, call("p1", ""))
}
