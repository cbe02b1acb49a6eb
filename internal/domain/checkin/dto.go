package checkin

import (
	"time"

	"github.com/wellpass/wellpass-backend/internal/pkg/validator"
)

// QRTokenResponse is what the client renders as a QR code with a countdown.
type QRTokenResponse struct {
	TokenID          string `json:"token_id"`
	Token            string `json:"token"`
	UserID           string `json:"user_id"`
	CreatedAt        string `json:"created_at"`
	ExpiresAt        string `json:"expires_at"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

func NewQRTokenResponse(t Token, remaining int) QRTokenResponse {
	return QRTokenResponse{
		TokenID:          t.ID,
		Token:            t.Value,
		UserID:           t.UserID,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
		ExpiresAt:        t.ExpiresAt.Format(time.RFC3339),
		ExpiresInSeconds: remaining,
	}
}

type CheckInResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CompanyID   *string `json:"company_id,omitempty"`
	PartnerID   string  `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	PartnerType string  `json:"partner_type"`
	Timestamp   string  `json:"timestamp"`
	QRToken     string  `json:"qr_token"`
}

func NewCheckInResponse(c CheckIn) CheckInResponse {
	return CheckInResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		CompanyID:   c.CompanyID,
		PartnerID:   c.PartnerID,
		PartnerName: c.PartnerName,
		PartnerType: string(c.PartnerType),
		Timestamp:   c.Timestamp.Format(time.RFC3339),
		QRToken:     c.QRToken,
	}
}

// RecordCheckInRequest redeems a QR token at a partner. UserID is optional; when set
// it must match the token owner.
type RecordCheckInRequest struct {
	UserID    string `json:"user_id,omitempty"`
	PartnerID string `json:"partner_id"`
	Token     string `json:"token"`
}

func (r *RecordCheckInRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.PartnerID) {
		errs.Add("partner_id", "partner_id is required")
	}
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	return errs.Err()
}

// TerminalCheckInRequest is the body a partner terminal posts after scanning a QR code.
type TerminalCheckInRequest struct {
	Token string `json:"token"`
}

func (r *TerminalCheckInRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	return errs.Err()
}

type QuotaResponse struct {
	PlanID      *string `json:"plan_id,omitempty"`
	PlanName    string  `json:"plan_name"`
	Limit       int     `json:"limit"`
	Used        int     `json:"used"`
	Remaining   int     `json:"remaining"`
	Period      string  `json:"period"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
}
