package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
	"github.com/wellpass/wellpass-backend/internal/pkg/countdown"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
)

const (
	qrTokenPath     = "/api/v1/me/qr-token"
	streamKeepalive = 30 * time.Second
	passFilename    = "wellpass-pass.pdf"
	eventConnected  = "connected"
)

type MeHandler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ListCheckIns(w http.ResponseWriter, r *http.Request)
	GetQuota(w http.ResponseWriter, r *http.Request)
	IssueQRToken(w http.ResponseWriter, r *http.Request)
	StreamQRToken(w http.ResponseWriter, r *http.Request)
	DownloadPass(w http.ResponseWriter, r *http.Request)
}

type MeHandlerImpl struct {
	userService    user.UserService
	checkInService checkin.CheckInService
	hub            *sse.Hub
	now            func() time.Time
	tickInterval   time.Duration
}

func NewMeHandler(userService user.UserService, checkInService checkin.CheckInService, hub *sse.Hub) MeHandler {
	return &MeHandlerImpl{
		userService:    userService,
		checkInService: checkInService,
		hub:            hub,
		now:            time.Now,
		tickInterval:   time.Second,
	}
}

// GetProfile implements MeHandler.
func (h *MeHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	profile, err := h.userService.GetProfile(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, profile)
}

// UpdateProfile implements MeHandler.
func (h *MeHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), sess.UserID, req)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated successfully", profile)
}

// ListCheckIns implements MeHandler.
func (h *MeHandlerImpl) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	records, err := h.checkInService.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	items := make([]checkin.CheckInResponse, 0, len(records))
	for _, c := range records {
		items = append(items, checkin.NewCheckInResponse(c))
	}
	response.SuccessWithMeta(w, items, &response.Meta{TotalItems: int64(len(items))})
}

// GetQuota implements MeHandler.
func (h *MeHandlerImpl) GetQuota(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	quota, err := h.checkInService.Quota(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, quota)
}

// IssueQRToken implements MeHandler.
func (h *MeHandlerImpl) IssueQRToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.checkInService.IssueToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "QR token generated", token)
}

// DownloadPass implements MeHandler.
func (h *MeHandlerImpl) DownloadPass(w http.ResponseWriter, r *http.Request) {
	body, err := h.checkInService.RenderPass(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.PDFBytes(w, passFilename, body)
}

type tickEvent struct {
	TokenID          string `json:"token_id"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type expiredEvent struct {
	TokenID    string `json:"token_id"`
	ReissueURL string `json:"reissue_url"`
}

// StreamQRToken implements MeHandler. It streams the countdown of one token and ends
// with exactly one of expired, consumed or superseded.
func (h *MeHandlerImpl) StreamQRToken(w http.ResponseWriter, r *http.Request) {
	tokenID := r.URL.Query().Get("token_id")
	if tokenID == "" {
		response.ValidationError(w, map[string]string{"token_id": "token_id is required"})
		return
	}
	sess, err := session.Require(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// Subscribe before reading the token so a redemption landing in between is still seen.
	events, cleanup := h.hub.Subscribe(sess.UserID)
	defer cleanup()

	token, err := h.checkInService.GetToken(r.Context(), tokenID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	write := func(name string, data interface{}) bool {
		if err := sse.Write(w, name, data); err != nil {
			slog.Debug("qr token stream closed", "token_id", token.ID, "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !write(eventConnected, map[string]string{"token_id": token.ID}) {
		return
	}
	switch token.State(h.now()) {
	case checkin.TokenConsumed:
		write(checkin.EventConsumed, map[string]string{"token_id": token.ID})
		return
	case checkin.TokenSuperseded:
		write(checkin.EventSuperseded, map[string]string{"token_id": token.ID})
		return
	}

	ctx := r.Context()
	ticks := make(chan int, 1)
	expired := make(chan struct{})
	timer := countdown.Start(ctx, token.ExpiresAt,
		func(remaining int) {
			select {
			case ticks <- remaining:
			default:
			}
		},
		func() { close(expired) },
		countdown.WithClock(h.now),
		countdown.WithInterval(h.tickInterval),
	)
	defer timer.Stop()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case remaining := <-ticks:
			if !write(checkin.EventTick, tickEvent{TokenID: token.ID, ExpiresInSeconds: remaining}) {
				return
			}

		case <-expired:
			write(checkin.EventExpired, expiredEvent{TokenID: token.ID, ReissueURL: qrTokenPath})
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if endsStream(ev, token.ID) {
				write(ev.Name, ev.Data)
				return
			}

		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// endsStream reports whether a hub event finishes the stream of tokenID.
func endsStream(ev sse.Event, tokenID string) bool {
	switch ev.Name {
	case checkin.EventConsumed:
		c, ok := ev.Data.(checkin.CheckInResponse)
		return ok && c.QRToken == tokenID
	case checkin.EventSuperseded:
		m, ok := ev.Data.(map[string]string)
		return ok && m["superseded_by"] != tokenID
	}
	return false
}
