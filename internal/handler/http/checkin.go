package http

import (
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

// CheckInHandler records redemptions from partner terminals and from platform admins.
type CheckInHandler interface {
	RecordManual(w http.ResponseWriter, r *http.Request)
	RecordFromTerminal(w http.ResponseWriter, r *http.Request)
}

type CheckInHandlerImpl struct {
	checkInService checkin.CheckInService
}

func NewCheckInHandler(checkInService checkin.CheckInService) CheckInHandler {
	return &CheckInHandlerImpl{
		checkInService: checkInService,
	}
}

// RecordManual implements CheckInHandler.
func (h *CheckInHandlerImpl) RecordManual(w http.ResponseWriter, r *http.Request) {
	var req checkin.RecordCheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	recorded, err := h.checkInService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Check-in recorded", checkin.NewCheckInResponse(recorded))
}

// RecordFromTerminal implements CheckInHandler. The partner comes from the terminal
// credentials and the user from the token.
func (h *CheckInHandlerImpl) RecordFromTerminal(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.TerminalPartner(r.Context())
	if !ok {
		response.Unauthorized(w, "Partner terminal credentials required")
		return
	}

	var req checkin.TerminalCheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	recorded, err := h.checkInService.Record(r.Context(), checkin.RecordCheckInRequest{
		PartnerID: p.ID,
		Token:     req.Token,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Check-in recorded", checkin.NewCheckInResponse(recorded))
}
