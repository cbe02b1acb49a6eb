package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/config"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
	"github.com/wellpass/wellpass-backend/internal/pkg/metrics"
	"github.com/wellpass/wellpass-backend/internal/pkg/pdf"
	"github.com/wellpass/wellpass-backend/internal/pkg/qrsign"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
	"github.com/wellpass/wellpass-backend/internal/pkg/storage"
	"github.com/wellpass/wellpass-backend/internal/repository/memory"
	analyticsService "github.com/wellpass/wellpass-backend/internal/service/analytics"
	authService "github.com/wellpass/wellpass-backend/internal/service/auth"
	checkinService "github.com/wellpass/wellpass-backend/internal/service/checkin"
	companyService "github.com/wellpass/wellpass-backend/internal/service/company"
	employeeService "github.com/wellpass/wellpass-backend/internal/service/employee"
	invoiceService "github.com/wellpass/wellpass-backend/internal/service/invoice"
	partnerService "github.com/wellpass/wellpass-backend/internal/service/partner"
	planService "github.com/wellpass/wellpass-backend/internal/service/plan"
	userService "github.com/wellpass/wellpass-backend/internal/service/user"
	"golang.org/x/crypto/bcrypt"
)

const (
	handlerTestSecret   = "handler-test-jwt-secret"
	handlerTestQRSecret = "handler-test-qr-secret"
	handlerTestPassword = "password123"
	handlerTestFrontend = "http://localhost:3000"
)

type fakeEmail struct {
	mu    sync.Mutex
	links []string
}

func (f *fakeEmail) SendInvitation(_ context.Context, _, _, _, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, link)
	return nil
}

func (f *fakeEmail) SendPasswordReset(_ context.Context, _, _, link, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, link)
	return nil
}

func (f *fakeEmail) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.links) == 0 {
		return ""
	}
	return f.links[len(f.links)-1]
}

// testEnv is the whole API on the in-memory store.
type testEnv struct {
	router  http.Handler
	jwt     jwt.Service
	hub     *sse.Hub
	email   *fakeEmail
	metrics *metrics.Metrics

	checkins  checkin.CheckInService
	users     user.UserRepository
	companies company.CompanyRepository
	plans     plan.PlanRepository
	partners  partner.PartnerRepository

	acme     company.Company
	silver   plan.Plan
	gym      partner.Partner
	gymKey   string
	employee user.User
	hr       user.User
	root     user.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	companies := memory.NewCompanyRepository(store)
	plans := memory.NewPlanRepository(store)
	partners := memory.NewPartnerRepository(store)
	tokens := memory.NewTokenRepository(store)
	ledger := memory.NewCheckInRepository(store)
	invoices := memory.NewInvoiceRepository(store)
	authTokens := memory.NewAuthTokenRepository(store)

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, "1h", "24h", false)
	require.NoError(t, err)
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	quota, err := checkinService.NewQuotaCalculator(config.QuotaPeriodCalendarMonth, "UTC")
	require.NoError(t, err)

	env := &testEnv{
		jwt:       jwtSvc,
		hub:       sse.NewHub(),
		email:     &fakeEmail{},
		metrics:   metrics.New(),
		users:     users,
		companies: companies,
		plans:     plans,
		partners:  partners,
	}

	renderer := pdf.NewMarotoRenderer("Wellpass")
	checkins := checkinService.NewCheckInService(store, checkinService.Repositories{
		Tokens:    tokens,
		Ledger:    ledger,
		Users:     users,
		Plans:     plans,
		Partners:  partners,
		Companies: companies,
	}, qrsign.NewSigner(handlerTestQRSecret), quota,
		checkinService.WithCooldown(time.Hour),
		checkinService.WithRenderer(renderer),
		checkinService.WithHub(env.hub),
		checkinService.WithMetrics(env.metrics),
	)
	env.checkins = checkins
	partnerSvc := partnerService.NewPartnerService(partners)

	handlers := Handlers{
		Auth:      NewAuthHandler(jwtSvc, authService.NewAuthService(store, users, companies, authTokens, jwtSvc, env.email, handlerTestFrontend), nil, handlerTestFrontend, false),
		Me:        NewMeHandler(userService.NewUserService(users, companies, plans), checkins, env.hub),
		Company:   NewCompanyHandler(companyService.NewCompanyService(store, companies, users)),
		Employee:  NewEmployeeHandler(employeeService.NewEmployeeService(store, users, companies, plans, tokens, checkins, env.hub, env.email, handlerTestFrontend)),
		Invoice:   NewInvoiceHandler(invoiceService.NewInvoiceService(invoices, companies, users, plans, renderer, files)),
		Partner:   NewPartnerHandler(partnerSvc),
		Plan:      NewPlanHandler(planService.NewPlanService(store, plans, users)),
		CheckIn:   NewCheckInHandler(checkins),
		Analytics: NewAnalyticsHandler(analyticsService.NewAnalyticsService(ledger, users, companies, time.UTC)),
	}
	env.router = NewRouter(RouterConfig{
		JWTService:     jwtSvc,
		Membership:     middleware.NewMembershipMiddleware(users, companies),
		PartnerService: partnerSvc,
		Metrics:        env.metrics,
		Logger:         nil,
		AllowedOrigins: []string{handlerTestFrontend},
		RateLimit:      config.RateLimitConfig{PerSecond: 100, Burst: 100},
	}, handlers)

	env.acme, err = companies.Create(ctx, company.Company{Name: "Acme", Code: "ACME", AdminEmail: "hr@acme.test", Status: company.StatusActive})
	require.NoError(t, err)
	env.silver, err = plans.Create(ctx, plan.Plan{
		Tier:             plan.TierSilver,
		Name:             "Silver",
		MonthlyPrice:     decimal.RequireFromString("49.90"),
		CheckInsPerMonth: 8,
	})
	require.NoError(t, err)
	env.gym, err = partners.Create(ctx, partner.Partner{Name: "Iron Gym", Type: partner.TypeGym, City: "Jakarta", Latitude: -6.2, Longitude: 106.8, Status: partner.StatusApproved})
	require.NoError(t, err)
	key, err := partnerSvc.RotateTerminalKey(ctx, env.gym.ID)
	require.NoError(t, err)
	env.gymKey = key.TerminalKey

	env.employee = env.createUser(t, user.User{Email: "ana@acme.test", Name: "Ana", Role: user.RoleEmployee, CompanyID: &env.acme.ID, PlanID: &env.silver.ID})
	env.hr = env.createUser(t, user.User{Email: "hr@acme.test", Name: "HR", Role: user.RoleCompanyAdmin, CompanyID: &env.acme.ID})
	env.root = env.createUser(t, user.User{Email: "root@wellpass.test", Name: "Root", Role: user.RolePlatformAdmin})
	return env
}

func (e *testEnv) createUser(t *testing.T, u user.User) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(handlerTestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	u.PasswordHash = &h
	if u.Status == "" {
		u.Status = user.StatusActive
	}
	created, err := e.users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func (e *testEnv) tokenFor(t *testing.T, u user.User) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(u.ID, u.Email, u.CompanyID, u.Role)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors response.Response with a typed data field.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int64 `json:"total_items"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
