package checkin

import (
	"fmt"
	"time"

	"github.com/wellpass/wellpass-backend/internal/config"
)

const rollingWindow = 30 * 24 * time.Hour

// QuotaCalculator decides which check-ins count against a plan's monthly allowance.
type QuotaCalculator struct {
	period string
	loc    *time.Location
}

func NewQuotaCalculator(period string, timezone string) (*QuotaCalculator, error) {
	switch period {
	case config.QuotaPeriodCalendarMonth, config.QuotaPeriodRolling30d:
	default:
		return nil, fmt.Errorf("unknown quota period %q", period)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load quota timezone: %w", err)
	}
	return &QuotaCalculator{period: period, loc: loc}, nil
}

func (c *QuotaCalculator) Period() string {
	return c.period
}

func (c *QuotaCalculator) Location() *time.Location {
	return c.loc
}

// Window returns the half-open interval [start, end) that contains now.
func (c *QuotaCalculator) Window(now time.Time) (time.Time, time.Time) {
	if c.period == config.QuotaPeriodRolling30d {
		return now.Add(-rollingWindow), now
	}
	local := now.In(c.loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 1, 0)
}

// Remaining never goes below zero.
func Remaining(limit, used int) int {
	return max(0, limit-used)
}
