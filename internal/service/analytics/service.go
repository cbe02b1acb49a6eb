package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/analytics"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

type AnalyticsServiceImpl struct {
	ledger    checkin.CheckInRepository
	users     user.UserRepository
	companies company.CompanyRepository
	loc       *time.Location
	now       func() time.Time
}

// NewAnalyticsService reports days in loc; nil means UTC.
func NewAnalyticsService(ledger checkin.CheckInRepository, users user.UserRepository, companies company.CompanyRepository, loc *time.Location) analytics.AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsServiceImpl{
		ledger:    ledger,
		users:     users,
		companies: companies,
		loc:       loc,
		now:       time.Now,
	}
}

// GetAnalytics implements analytics.AnalyticsService. The window covers today and the
// days-1 days before it; days without check-ins are reported with a zero count.
func (s *AnalyticsServiceImpl) GetAnalytics(ctx context.Context, days int) (analytics.AnalyticsResponse, error) {
	switch {
	case days <= 0:
		days = analytics.DefaultDays
	case days > analytics.MaxDays:
		days = analytics.MaxDays
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	since := today.AddDate(0, 0, -(days - 1))

	total, err := s.ledger.CountSince(ctx, since)
	if err != nil {
		return analytics.AnalyticsResponse{}, fmt.Errorf("failed to count check-ins: %w", err)
	}
	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return analytics.AnalyticsResponse{}, fmt.Errorf("failed to count users: %w", err)
	}
	activeCompanies, err := s.companies.CountActive(ctx)
	if err != nil {
		return analytics.AnalyticsResponse{}, fmt.Errorf("failed to count companies: %w", err)
	}
	daily, err := s.ledger.DailyCounts(ctx, since, s.loc)
	if err != nil {
		return analytics.AnalyticsResponse{}, fmt.Errorf("failed to group check-ins: %w", err)
	}

	counts := make(map[string]int, len(daily))
	for _, d := range daily {
		counts[d.Date] = d.Count
	}
	series := make([]checkin.DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, checkin.DailyCount{Date: day, Count: counts[day]})
	}

	return analytics.AnalyticsResponse{
		Days:             days,
		TotalCheckIns:    total,
		ActiveUsers:      activeUsers,
		ActiveCompanies:  activeCompanies,
		CheckInsOverTime: series,
	}, nil
}
