package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/employee"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/email"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
)

type EmployeeServiceImpl struct {
	db          database.Transactor
	users       user.UserRepository
	companies   company.CompanyRepository
	plans       plan.PlanRepository
	tokens      checkin.TokenRepository
	checkins    checkin.CheckInService
	hub         *sse.Hub
	email       email.EmailService
	frontendURL string
	now         func() time.Time
}

func NewEmployeeService(
	db database.Transactor,
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	planRepo plan.PlanRepository,
	tokenRepo checkin.TokenRepository,
	checkInService checkin.CheckInService,
	hub *sse.Hub,
	emailService email.EmailService,
	frontendURL string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		db:          db,
		users:       userRepo,
		companies:   companyRepo,
		plans:       planRepo,
		tokens:      tokenRepo,
		checkins:    checkInService,
		hub:         hub,
		email:       emailService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// companyFromSession returns the company the calling admin manages.
func companyFromSession(ctx context.Context) (string, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return "", err
	}
	companyID := sess.CompanyIDValue()
	if companyID == "" {
		return "", employee.ErrNoCompany
	}
	return companyID, nil
}

// getEmployee loads a user of the session company.
func (s *EmployeeServiceImpl) getEmployee(ctx context.Context, companyID, employeeID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, employee.ErrEmployeeNotFound
		}
		return user.User{}, err
	}
	if !u.BelongsTo(companyID) {
		return user.User{}, employee.ErrNotInCompany
	}
	if u.Role != user.RoleEmployee {
		return user.User{}, employee.ErrEmployeeNotFound
	}
	return u, nil
}

// planNames maps plan IDs to names for the response rows.
func (s *EmployeeServiceImpl) planNames(ctx context.Context) (map[string]string, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	names := make(map[string]string, len(plans))
	for _, p := range plans {
		names[p.ID] = p.Name
	}
	return names, nil
}

func planLabel(u user.User, names map[string]string) string {
	if !u.HasPlan() {
		return employee.NoPlanLabel
	}
	if name, ok := names[*u.PlanID]; ok {
		return name
	}
	return employee.NoPlanLabel
}

func (s *EmployeeServiceImpl) response(ctx context.Context, u user.User) (employee.EmployeeResponse, error) {
	names, err := s.planNames(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(u, planLabel(u, names)), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	companyID, err := companyFromSession(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names, err := s.planNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]employee.EmployeeResponse, 0, len(users))
	for _, u := range users {
		if u.Role != user.RoleEmployee {
			continue
		}
		out = append(out, employee.NewEmployeeResponse(u, planLabel(u, names)))
	}
	return out, nil
}

// InviteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) InviteEmployee(ctx context.Context, req employee.InviteEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	companyID, err := companyFromSession(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.PlanID != nil {
		if _, err := s.plans.GetByID(ctx, *req.PlanID); err != nil {
			return employee.EmployeeResponse{}, err
		}
	}

	invited, err := s.users.Create(ctx, user.User{
		Email:     req.Email,
		Name:      strings.TrimSpace(req.Name),
		Role:      user.RoleEmployee,
		CompanyID: &c.ID,
		PlanID:    req.PlanID,
		Status:    user.StatusInvited,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return employee.EmployeeResponse{}, employee.ErrEmailExists
		}
		return employee.EmployeeResponse{}, err
	}

	link := fmt.Sprintf("%s/auth/register?email=%s&company=%s",
		s.frontendURL, url.QueryEscape(invited.Email), url.QueryEscape(c.Code))
	if err := s.email.SendInvitation(ctx, invited.Email, invited.Name, c.Name, link); err != nil {
		slog.Error("failed to send invitation email", "user_id", invited.ID, "error", err)
	}

	slog.Info("employee invited", "user_id", invited.ID, "company_id", c.ID)
	return s.response(ctx, invited)
}

// AssignPlan implements employee.EmployeeService. Active and inactive employees become
// active; invited employees stay invited until they register.
func (s *EmployeeServiceImpl) AssignPlan(ctx context.Context, req employee.AssignPlanRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	companyID, err := companyFromSession(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated user.User
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.getEmployee(ctx, companyID, req.EmployeeID)
		if err != nil {
			return err
		}
		if _, err := s.plans.GetByID(ctx, req.PlanID); err != nil {
			return err
		}

		status := user.StatusActive
		if u.Status == user.StatusInvited {
			status = user.StatusInvited
		}
		updated, err = s.users.UpdatePlan(ctx, u.ID, &req.PlanID, status)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("plan assigned", "user_id", updated.ID, "plan_id", req.PlanID)
	return s.response(ctx, updated)
}

// DeactivateEmployee implements employee.EmployeeService. Live QR tokens of the employee
// are superseded so they cannot be redeemed afterwards.
func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, employeeID string) (employee.EmployeeResponse, error) {
	companyID, err := companyFromSession(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	var (
		updated    user.User
		superseded int64
	)
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.getEmployee(ctx, companyID, employeeID)
		if err != nil {
			return err
		}
		updated, err = s.users.UpdateStatus(ctx, u.ID, user.StatusInactive)
		if err != nil {
			return err
		}
		superseded, err = s.tokens.SupersedeLive(ctx, u.ID, s.now())
		if err != nil {
			return fmt.Errorf("failed to revoke qr tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if superseded > 0 && s.hub != nil {
		// No successor token; open streams end on any superseded event not naming theirs.
		s.hub.Publish(sse.Event{UserID: updated.ID, Name: checkin.EventSuperseded, Data: map[string]string{"superseded_by": ""}})
	}

	slog.Info("employee deactivated", "user_id", updated.ID, "company_id", companyID)
	return s.response(ctx, updated)
}

// GetCompanyUsage implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetCompanyUsage(ctx context.Context, rangeDays int) ([]employee.UsageRow, error) {
	companyID, err := companyFromSession(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case rangeDays <= 0:
		rangeDays = employee.DefaultUsageRangeDays
	case rangeDays > employee.MaxUsageRangeDays:
		rangeDays = employee.MaxUsageRangeDays
	}

	since := s.now().AddDate(0, 0, -rangeDays)
	usage, err := s.checkins.ListForCompany(ctx, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	byUser := make(map[string]checkin.Usage, len(usage))
	for _, u := range usage {
		byUser[u.UserID] = u
	}

	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names, err := s.planNames(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]employee.UsageRow, 0, len(users))
	for _, u := range users {
		if u.Role != user.RoleEmployee {
			continue
		}
		row := employee.UsageRow{
			EmployeeID:   u.ID,
			EmployeeName: u.Name,
			Plan:         planLabel(u, names),
		}
		if usage, ok := byUser[u.ID]; ok {
			row.CheckIns = usage.CheckIns
			if usage.LastCheckIn != nil {
				last := usage.LastCheckIn.UTC().Format(time.RFC3339)
				row.LastCheckIn = &last
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
