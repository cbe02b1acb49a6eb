package http

import (
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/analytics"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

type AnalyticsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type AnalyticsHandlerImpl struct {
	analyticsService analytics.AnalyticsService
}

func NewAnalyticsHandler(analyticsService analytics.AnalyticsService) AnalyticsHandler {
	return &AnalyticsHandlerImpl{
		analyticsService: analyticsService,
	}
}

// Get implements AnalyticsHandler.
func (h *AnalyticsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", analytics.DefaultDays)
	if !ok {
		response.ValidationError(w, map[string]string{"days": "days must be an integer"})
		return
	}

	report, err := h.analyticsService.GetAnalytics(r.Context(), days)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report)
}
