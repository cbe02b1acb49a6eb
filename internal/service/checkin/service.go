package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/pkg/countdown"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
	"github.com/wellpass/wellpass-backend/internal/pkg/metrics"
	"github.com/wellpass/wellpass-backend/internal/pkg/pdf"
	"github.com/wellpass/wellpass-backend/internal/pkg/qrsign"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
)

// staleTokenRetention is how long expired tokens are kept before the purge job removes them.
const staleTokenRetention = 24 * time.Hour

// Repositories groups the stores the check-in service reads and writes.
type Repositories struct {
	Tokens    checkin.TokenRepository
	Ledger    checkin.CheckInRepository
	Users     user.UserRepository
	Plans     plan.PlanRepository
	Partners  partner.PartnerRepository
	Companies company.CompanyRepository
}

type Option func(*CheckInServiceImpl)

// WithCooldown sets the minimum interval between two check-ins of a user at one partner.
func WithCooldown(d time.Duration) Option {
	return func(s *CheckInServiceImpl) { s.cooldown = d }
}

func WithRenderer(r pdf.Renderer) Option {
	return func(s *CheckInServiceImpl) { s.renderer = r }
}

func WithHub(h *sse.Hub) Option {
	return func(s *CheckInServiceImpl) { s.hub = h }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CheckInServiceImpl) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *CheckInServiceImpl) { s.now = now }
}

type CheckInServiceImpl struct {
	db database.Transactor
	Repositories
	signer   *qrsign.Signer
	quota    *QuotaCalculator
	cooldown time.Duration
	renderer pdf.Renderer
	hub      *sse.Hub
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewCheckInService(db database.Transactor, repos Repositories, signer *qrsign.Signer, quota *QuotaCalculator, opts ...Option) checkin.CheckInService {
	s := &CheckInServiceImpl{
		db:           db,
		Repositories: repos,
		signer:       signer,
		quota:        quota,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueToken implements checkin.CheckInService.
func (s *CheckInServiceImpl) IssueToken(ctx context.Context) (checkin.QRTokenResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return checkin.QRTokenResponse{}, err
	}
	if _, err := s.activeMember(ctx, sess.UserID); err != nil {
		return checkin.QRTokenResponse{}, err
	}

	createdAt := s.now().UTC().Truncate(time.Second)
	token := checkin.Token{
		ID:        checkin.TokenIDPrefix + ids.NewULID(),
		UserID:    sess.UserID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(checkin.TokenTTL),
	}
	token.Value, err = s.signer.Sign(token.ID, token.UserID, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return checkin.QRTokenResponse{}, err
	}

	var superseded int64
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.Tokens.SupersedeLive(ctx, token.UserID, createdAt)
		if err != nil {
			return fmt.Errorf("supersede live tokens: %w", err)
		}
		superseded = n
		return s.Tokens.Create(ctx, token)
	})
	if err != nil {
		return checkin.QRTokenResponse{}, err
	}

	s.metrics.TokenIssued()
	if superseded > 0 {
		s.publish(token.UserID, checkin.EventSuperseded, map[string]string{"superseded_by": token.ID})
	}
	slog.Info("check-in token issued", "user_id", token.UserID, "token_id", token.ID, "superseded", superseded)

	return checkin.NewQRTokenResponse(token, countdown.Remaining(token.ExpiresAt, s.now())), nil
}

// activeMember loads the user and checks they may hold a check-in token.
func (s *CheckInServiceImpl) activeMember(ctx context.Context, userID string) (user.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if u.Role != user.RoleEmployee {
		return user.User{}, checkin.ErrNotAnEmployee
	}
	if !u.IsActive() {
		return user.User{}, checkin.ErrUserInactive
	}
	if !u.HasPlan() {
		return user.User{}, checkin.ErrNoActivePlan
	}
	return u, nil
}

// GetToken implements checkin.CheckInService. Tokens of other users look missing.
func (s *CheckInServiceImpl) GetToken(ctx context.Context, tokenID string) (checkin.Token, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return checkin.Token{}, err
	}
	token, err := s.Tokens.GetByID(ctx, tokenID)
	if err != nil {
		return checkin.Token{}, err
	}
	if token.UserID != sess.UserID {
		return checkin.Token{}, checkin.ErrTokenNotFound
	}
	return token, nil
}

// Record implements checkin.CheckInService.
func (s *CheckInServiceImpl) Record(ctx context.Context, req checkin.RecordCheckInRequest) (checkin.CheckIn, error) {
	recorded, err := s.record(ctx, req)
	if err != nil {
		s.metrics.CheckInRejected(rejectReason(err))
		slog.Warn("check-in rejected", "partner_id", req.PartnerID, "reason", rejectReason(err), "error", err)
		return checkin.CheckIn{}, err
	}

	s.metrics.CheckInRecorded()
	s.publish(recorded.UserID, checkin.EventConsumed, checkin.NewCheckInResponse(recorded))
	slog.Info("check-in recorded",
		"check_in_id", recorded.ID,
		"user_id", recorded.UserID,
		"partner_id", recorded.PartnerID,
		"token_id", recorded.QRToken,
	)
	return recorded, nil
}

func (s *CheckInServiceImpl) record(ctx context.Context, req checkin.RecordCheckInRequest) (checkin.CheckIn, error) {
	// Scanners in keyboard mode append CR/LF to the payload.
	req.Token = strings.TrimSpace(req.Token)
	if err := req.Validate(); err != nil {
		return checkin.CheckIn{}, err
	}

	claims, err := s.signer.Verify(req.Token)
	if err != nil {
		if errors.Is(err, qrsign.ErrTokenExpired) {
			return checkin.CheckIn{}, checkin.ErrTokenExpired
		}
		return checkin.CheckIn{}, checkin.ErrTokenInvalid
	}
	if req.UserID != "" && req.UserID != claims.Subject {
		return checkin.CheckIn{}, checkin.ErrTokenUserMismatch
	}

	var recorded checkin.CheckIn
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.now()

		token, err := s.Tokens.GetByID(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, checkin.ErrTokenNotFound) {
				return checkin.ErrTokenInvalid
			}
			return err
		}
		if token.UserID != claims.Subject || token.Value != req.Token {
			return checkin.ErrTokenInvalid
		}
		switch token.State(now) {
		case checkin.TokenConsumed:
			return checkin.ErrTokenConsumed
		case checkin.TokenSuperseded:
			return checkin.ErrTokenSuperseded
		case checkin.TokenExpired:
			return checkin.ErrTokenExpired
		}

		p, err := s.Partners.GetByID(ctx, req.PartnerID)
		if err != nil {
			return err
		}
		if !p.IsApproved() {
			return partner.ErrPartnerNotApproved
		}

		u, err := s.activeMember(ctx, token.UserID)
		if err != nil {
			return err
		}
		pl, err := s.Plans.GetByID(ctx, *u.PlanID)
		if err != nil {
			if errors.Is(err, plan.ErrPlanNotFound) {
				return checkin.ErrNoActivePlan
			}
			return err
		}
		if !pl.Includes(p.Type) {
			return checkin.ErrCategoryNotIncluded
		}

		start, _ := s.quota.Window(now)
		used, err := s.Ledger.CountByUserSince(ctx, u.ID, start)
		if err != nil {
			return fmt.Errorf("count check-ins: %w", err)
		}
		if Remaining(pl.CheckInsPerMonth, used) == 0 {
			return checkin.ErrQuotaExceeded
		}

		if s.cooldown > 0 {
			last, ok, err := s.Ledger.LastAtPartner(ctx, u.ID, p.ID)
			if err != nil {
				return fmt.Errorf("last check-in at partner: %w", err)
			}
			if ok && now.Sub(last) < s.cooldown {
				return checkin.ErrCooldownActive
			}
		}

		if err := s.Tokens.Consume(ctx, token.ID, now); err != nil {
			return err
		}

		recorded = checkin.CheckIn{
			ID:          ids.NewULID(),
			UserID:      u.ID,
			CompanyID:   u.CompanyID,
			PartnerID:   p.ID,
			PartnerName: p.Name,
			PartnerType: p.Type,
			Timestamp:   now,
			QRToken:     token.ID,
		}
		return s.Ledger.Append(ctx, recorded)
	})
	if err != nil {
		return checkin.CheckIn{}, err
	}
	return recorded, nil
}

// ListForUser implements checkin.CheckInService.
func (s *CheckInServiceImpl) ListForUser(ctx context.Context, userID string) ([]checkin.CheckIn, error) {
	if err := s.authorizeUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.Ledger.ListByUser(ctx, userID)
}

// ListForCompany implements checkin.CheckInService.
func (s *CheckInServiceImpl) ListForCompany(ctx context.Context, companyID string, since time.Time) ([]checkin.Usage, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Role != user.RolePlatformAdmin && (sess.Role != user.RoleCompanyAdmin || sess.CompanyIDValue() != companyID) {
		return nil, session.ErrForbidden
	}
	return s.Ledger.UsageByCompany(ctx, companyID, since)
}

// authorizeUser lets users read their own data, company admins read their employees and
// platform admins read anyone.
func (s *CheckInServiceImpl) authorizeUser(ctx context.Context, userID string) error {
	sess, err := session.Require(ctx)
	if err != nil {
		return err
	}
	switch {
	case sess.UserID == userID, sess.Role == user.RolePlatformAdmin:
		return nil
	case sess.Role == user.RoleCompanyAdmin:
		u, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.BelongsTo(sess.CompanyIDValue()) {
			return nil
		}
	}
	return session.ErrForbidden
}

// Quota implements checkin.CheckInService.
func (s *CheckInServiceImpl) Quota(ctx context.Context, userID string) (checkin.QuotaResponse, error) {
	if err := s.authorizeUser(ctx, userID); err != nil {
		return checkin.QuotaResponse{}, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return checkin.QuotaResponse{}, err
	}

	now := s.now()
	start, end := s.quota.Window(now)
	resp := checkin.QuotaResponse{
		Period:      s.quota.Period(),
		PeriodStart: start.Format(time.RFC3339),
		PeriodEnd:   end.Format(time.RFC3339),
	}

	used, err := s.Ledger.CountByUserSince(ctx, userID, start)
	if err != nil {
		return checkin.QuotaResponse{}, fmt.Errorf("count check-ins: %w", err)
	}
	resp.Used = used

	if !u.HasPlan() {
		return resp, nil
	}
	pl, err := s.Plans.GetByID(ctx, *u.PlanID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return resp, nil
		}
		return checkin.QuotaResponse{}, err
	}
	resp.PlanID = &pl.ID
	resp.PlanName = pl.Name
	resp.Limit = pl.CheckInsPerMonth
	resp.Remaining = Remaining(pl.CheckInsPerMonth, used)
	return resp, nil
}

// RenderPass implements checkin.CheckInService.
func (s *CheckInServiceImpl) RenderPass(ctx context.Context) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("pass rendering is not configured")
	}
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.activeMember(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.GetLiveByUser(ctx, u.ID, s.now())
	if err != nil {
		return nil, err
	}

	doc := pdf.PassDocument{
		HolderName: u.Name,
		TokenID:    token.ID,
		Token:      token.Value,
		ExpiresAt:  token.ExpiresAt,
	}
	if pl, err := s.Plans.GetByID(ctx, *u.PlanID); err == nil {
		doc.PlanName = pl.Name
	}
	if u.CompanyID != nil {
		if c, err := s.Companies.GetByID(ctx, *u.CompanyID); err == nil {
			doc.CompanyName = c.Name
		}
	}
	return s.renderer.RenderPass(ctx, doc)
}

// PurgeStaleTokens implements checkin.CheckInService.
func (s *CheckInServiceImpl) PurgeStaleTokens(ctx context.Context) (int64, error) {
	n, err := s.Tokens.DeleteExpiredBefore(ctx, s.now().Add(-staleTokenRetention))
	if err != nil {
		return 0, fmt.Errorf("purge stale tokens: %w", err)
	}
	if n > 0 {
		slog.Info("stale check-in tokens purged", "count", n)
	}
	return n, nil
}

func (s *CheckInServiceImpl) publish(userID, name string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{UserID: userID, Name: name, Data: data})
}

// rejectReason is the metrics label of a refused check-in.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, checkin.ErrTokenExpired):
		return "expired"
	case errors.Is(err, checkin.ErrTokenConsumed):
		return "consumed"
	case errors.Is(err, checkin.ErrTokenSuperseded):
		return "superseded"
	case errors.Is(err, checkin.ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, checkin.ErrTokenUserMismatch):
		return "user_mismatch"
	case errors.Is(err, partner.ErrPartnerNotFound), errors.Is(err, partner.ErrPartnerNotApproved):
		return "partner"
	case errors.Is(err, checkin.ErrUserInactive), errors.Is(err, checkin.ErrNotAnEmployee):
		return "user"
	case errors.Is(err, checkin.ErrNoActivePlan):
		return "no_plan"
	case errors.Is(err, checkin.ErrCategoryNotIncluded):
		return "category"
	case errors.Is(err, checkin.ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, checkin.ErrCooldownActive):
		return "cooldown"
	}
	return "other"
}
