package checkin

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/config"
)

func TestRemaining_NeverNegative(t *testing.T) {
	prev := 8
	for used := 0; used <= 9; used++ {
		r := Remaining(8, used)
		assert.GreaterOrEqual(t, r, 0)
		assert.LessOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, 0, Remaining(8, 9))
}

func TestQuotaCalculator_CalendarMonth(t *testing.T) {
	calc, err := NewQuotaCalculator(config.QuotaPeriodCalendarMonth, "Asia/Jakarta")
	require.NoError(t, err)

	// 2026-10-31 20:00 UTC is already November 1st in Jakarta.
	start, end := calc.Window(time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-11-01T00:00:00+07:00", start.Format(time.RFC3339))
	assert.Equal(t, "2026-12-01T00:00:00+07:00", end.Format(time.RFC3339))
}

func TestQuotaCalculator_Rolling(t *testing.T) {
	calc, err := NewQuotaCalculator(config.QuotaPeriodRolling30d, "UTC")
	require.NoError(t, err)

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	start, end := calc.Window(now)
	assert.Equal(t, now.AddDate(0, 0, -30), start)
	assert.Equal(t, now, end)
}

func TestNewQuotaCalculator_RejectsUnknownPeriod(t *testing.T) {
	_, err := NewQuotaCalculator("weekly", "UTC")
	assert.Error(t, err)

	_, err = NewQuotaCalculator(config.QuotaPeriodCalendarMonth, "Mars/Olympus")
	assert.Error(t, err)
}
