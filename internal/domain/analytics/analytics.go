package analytics

import (
	"context"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
)

const (
	DefaultDays = 30
	MaxDays     = 365
)

type AnalyticsResponse struct {
	Days             int                  `json:"days"`
	TotalCheckIns    int64                `json:"total_check_ins"`
	ActiveUsers      int64                `json:"active_users"`
	ActiveCompanies  int64                `json:"active_companies"`
	CheckInsOverTime []checkin.DailyCount `json:"check_ins_over_time"`
}

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, days int) (AnalyticsResponse, error)
}
