package employee

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/config"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/employee"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/qrsign"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
	"github.com/wellpass/wellpass-backend/internal/repository/memory"
	checkinService "github.com/wellpass/wellpass-backend/internal/service/checkin"
)

type invitation struct {
	to, company, link string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []invitation
}

func (f *fakeEmail) SendInvitation(_ context.Context, to, _, companyName, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, invitation{to: to, company: companyName, link: link})
	return nil
}

func (f *fakeEmail) SendPasswordReset(context.Context, string, string, string, string) error {
	return nil
}

// usageSpy records the companies whose usage was read through the check-in service.
type usageSpy struct {
	checkin.CheckInService
	mu        sync.Mutex
	companies []string
}

func (s *usageSpy) ListForCompany(ctx context.Context, companyID string, since time.Time) ([]checkin.Usage, error) {
	s.mu.Lock()
	s.companies = append(s.companies, companyID)
	s.mu.Unlock()
	return s.CheckInService.ListForCompany(ctx, companyID, since)
}

type employeeFixture struct {
	svc      employee.EmployeeService
	users    user.UserRepository
	tokens   checkin.TokenRepository
	ledger   checkin.CheckInRepository
	usage    *usageSpy
	hub      *sse.Hub
	email    *fakeEmail
	now      time.Time
	acme     company.Company
	beta     company.Company
	gold     plan.Plan
	adminCtx context.Context
}

func newEmployeeFixture(t *testing.T) *employeeFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	store := memory.NewStore().WithClock(func() time.Time { return now })
	companies := memory.NewCompanyRepository(store)
	plans := memory.NewPlanRepository(store)
	f := &employeeFixture{
		users:  memory.NewUserRepository(store),
		tokens: memory.NewTokenRepository(store),
		ledger: memory.NewCheckInRepository(store),
		hub:    sse.NewHub(),
		email:  &fakeEmail{},
		now:    now,
	}

	quota, err := checkinService.NewQuotaCalculator(config.QuotaPeriodCalendarMonth, "UTC")
	require.NoError(t, err)
	f.usage = &usageSpy{CheckInService: checkinService.NewCheckInService(store, checkinService.Repositories{
		Tokens:    f.tokens,
		Ledger:    f.ledger,
		Users:     f.users,
		Plans:     plans,
		Partners:  memory.NewPartnerRepository(store),
		Companies: companies,
	}, qrsign.NewSigner("qr-secret"), quota, checkinService.WithClock(func() time.Time { return now }))}

	svc := NewEmployeeService(store, f.users, companies, plans, f.tokens, f.usage, f.hub, f.email, "https://app.wellpass.test")
	svc.(*EmployeeServiceImpl).now = func() time.Time { return now }
	f.svc = svc

	f.acme, err = companies.Create(ctx, company.Company{Name: "Acme", Code: "ACME", AdminEmail: "hr@acme.test", Status: company.StatusActive})
	require.NoError(t, err)
	f.beta, err = companies.Create(ctx, company.Company{Name: "Beta", Code: "BETA", AdminEmail: "hr@beta.test", Status: company.StatusActive})
	require.NoError(t, err)
	f.gold, err = plans.Create(ctx, plan.Plan{Tier: plan.TierGold, Name: "Gold", MonthlyPrice: decimal.NewFromInt(90), CheckInsPerMonth: 12})
	require.NoError(t, err)

	admin, err := f.users.Create(ctx, user.User{Email: "hr@acme.test", Name: "HR", Role: user.RoleCompanyAdmin, CompanyID: &f.acme.ID, Status: user.StatusActive})
	require.NoError(t, err)
	f.adminCtx = session.NewContext(ctx, &session.Session{UserID: admin.ID, Role: admin.Role, CompanyID: &f.acme.ID})
	return f
}

func (f *employeeFixture) createEmployee(t *testing.T, c company.Company, email, name string, planID *string) user.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), user.User{
		Email: email, Name: name, Role: user.RoleEmployee, CompanyID: &c.ID, PlanID: planID, Status: user.StatusActive,
	})
	require.NoError(t, err)
	return u
}

func TestEmployeeService_ListEmployees(t *testing.T) {
	f := newEmployeeFixture(t)
	f.createEmployee(t, f.acme, "ana@acme.test", "Ana", &f.gold.ID)
	f.createEmployee(t, f.acme, "bo@acme.test", "Bo", nil)
	f.createEmployee(t, f.beta, "cy@beta.test", "Cy", nil)

	list, err := f.svc.ListEmployees(f.adminCtx)
	require.NoError(t, err)
	require.Len(t, list, 2, "only employees of the session company, without admins")
	assert.Equal(t, "Ana", list[0].Name)
	assert.Equal(t, "Gold", list[0].PlanName)
	assert.Equal(t, employee.NoPlanLabel, list[1].PlanName)

	_, err = f.svc.ListEmployees(context.Background())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)

	noCompany := session.NewContext(context.Background(), &session.Session{UserID: "x", Role: user.RolePlatformAdmin})
	_, err = f.svc.ListEmployees(noCompany)
	assert.ErrorIs(t, err, employee.ErrNoCompany)
}

func TestEmployeeService_InviteEmployee(t *testing.T) {
	f := newEmployeeFixture(t)

	resp, err := f.svc.InviteEmployee(f.adminCtx, employee.InviteEmployeeRequest{Name: "Dee", Email: "Dee@Acme.test", PlanID: &f.gold.ID})
	require.NoError(t, err)
	assert.Equal(t, string(user.StatusInvited), resp.Status)
	assert.Equal(t, "dee@acme.test", resp.Email)
	assert.Equal(t, "Gold", resp.PlanName)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "Acme", f.email.sent[0].company)
	link, err := url.Parse(f.email.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "/auth/register", link.Path)
	assert.Equal(t, "dee@acme.test", link.Query().Get("email"))
	assert.Equal(t, "ACME", link.Query().Get("company"))

	_, err = f.svc.InviteEmployee(f.adminCtx, employee.InviteEmployeeRequest{Name: "Dee", Email: "dee@acme.test"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	missing := "missing"
	_, err = f.svc.InviteEmployee(f.adminCtx, employee.InviteEmployeeRequest{Name: "Eve", Email: "eve@acme.test", PlanID: &missing})
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestEmployeeService_AssignPlan(t *testing.T) {
	f := newEmployeeFixture(t)
	ana := f.createEmployee(t, f.acme, "ana@acme.test", "Ana", nil)
	cy := f.createEmployee(t, f.beta, "cy@beta.test", "Cy", nil)

	_, err := f.users.UpdateStatus(context.Background(), ana.ID, user.StatusInactive)
	require.NoError(t, err)

	resp, err := f.svc.AssignPlan(f.adminCtx, employee.AssignPlanRequest{EmployeeID: ana.ID, PlanID: f.gold.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gold", resp.PlanName)
	assert.Equal(t, string(user.StatusActive), resp.Status)

	_, err = f.svc.AssignPlan(f.adminCtx, employee.AssignPlanRequest{EmployeeID: cy.ID, PlanID: f.gold.ID})
	assert.ErrorIs(t, err, employee.ErrNotInCompany)

	_, err = f.svc.AssignPlan(f.adminCtx, employee.AssignPlanRequest{EmployeeID: "missing", PlanID: f.gold.ID})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.AssignPlan(f.adminCtx, employee.AssignPlanRequest{EmployeeID: ana.ID, PlanID: "missing"})
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestEmployeeService_DeactivateEmployee_SupersedesTokens(t *testing.T) {
	f := newEmployeeFixture(t)
	ana := f.createEmployee(t, f.acme, "ana@acme.test", "Ana", &f.gold.ID)

	tok := checkin.Token{ID: "QR-1", UserID: ana.ID, Value: "v", CreatedAt: f.now, ExpiresAt: f.now.Add(checkin.TokenTTL)}
	require.NoError(t, f.tokens.Create(context.Background(), tok))

	events, cancel := f.hub.Subscribe(ana.ID)
	defer cancel()

	resp, err := f.svc.DeactivateEmployee(f.adminCtx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, string(user.StatusInactive), resp.Status)

	_, err = f.tokens.GetLiveByUser(context.Background(), ana.ID, f.now)
	assert.ErrorIs(t, err, checkin.ErrTokenNotFound)

	select {
	case ev := <-events:
		assert.Equal(t, checkin.EventSuperseded, ev.Name)
		assert.NotEqual(t, tok.ID, ev.Data.(map[string]string)["superseded_by"], "open streams of the revoked token must end")
	default:
		t.Fatal("expected a superseded event")
	}
}

func TestEmployeeService_DeactivateEmployee_NoTokensNoEvent(t *testing.T) {
	f := newEmployeeFixture(t)
	ana := f.createEmployee(t, f.acme, "ana@acme.test", "Ana", &f.gold.ID)
	events, cancel := f.hub.Subscribe(ana.ID)
	defer cancel()

	_, err := f.svc.DeactivateEmployee(f.adminCtx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEmployeeService_GetCompanyUsage(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := context.Background()
	ana := f.createEmployee(t, f.acme, "ana@acme.test", "Ana", &f.gold.ID)
	f.createEmployee(t, f.acme, "bo@acme.test", "Bo", nil)

	record := func(u user.User, at time.Time, id string) {
		require.NoError(t, f.ledger.Append(ctx, checkin.CheckIn{
			ID: id, UserID: u.ID, CompanyID: u.CompanyID, PartnerID: "p1",
			PartnerName: "Iron Gym", PartnerType: partner.TypeGym, Timestamp: at, QRToken: "QR-" + id,
		}))
	}
	record(ana, f.now.Add(-2*time.Hour), "1")
	record(ana, f.now.Add(-10*24*time.Hour), "2")
	record(ana, f.now.Add(-60*24*time.Hour), "3")

	rows, err := f.svc.GetCompanyUsage(f.adminCtx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{f.acme.ID}, f.usage.companies, "usage is read through the check-in service")

	assert.Equal(t, "Ana", rows[0].EmployeeName)
	assert.Equal(t, 2, rows[0].CheckIns, "default range is 30 days")
	assert.Equal(t, "Gold", rows[0].Plan)
	require.NotNil(t, rows[0].LastCheckIn)
	assert.Equal(t, f.now.Add(-2*time.Hour).Format(time.RFC3339), *rows[0].LastCheckIn)

	assert.Equal(t, "Bo", rows[1].EmployeeName)
	assert.Equal(t, 0, rows[1].CheckIns)
	assert.Nil(t, rows[1].LastCheckIn)
	assert.Equal(t, employee.NoPlanLabel, rows[1].Plan)

	rows, err = f.svc.GetCompanyUsage(f.adminCtx, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, rows[0].CheckIns, "range is capped but still covers 60 days")
}
