package checkin

import (
	"time"

	"github.com/wellpass/wellpass-backend/internal/domain/partner"
)

const (
	// TokenTTL is the lifetime of a QR check-in token.
	TokenTTL = 300 * time.Second
	// TokenIDPrefix marks check-in token IDs.
	TokenIDPrefix = "QR-"
)

type TokenState string

const (
	TokenLive       TokenState = "live"
	TokenExpired    TokenState = "expired"
	TokenConsumed   TokenState = "consumed"
	TokenSuperseded TokenState = "superseded"
)

// Token is a server-side record of an issued QR code. Value is the signed string the
// QR code encodes.
type Token struct {
	ID           string
	UserID       string
	Value        string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	ConsumedAt   *time.Time
	SupersededAt *time.Time
}

// State reports the token's lifecycle state at now. Consumption wins over supersession
// and both win over expiry.
func (t *Token) State(now time.Time) TokenState {
	switch {
	case t.ConsumedAt != nil:
		return TokenConsumed
	case t.SupersededAt != nil:
		return TokenSuperseded
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	default:
		return TokenLive
	}
}

// CheckIn is an immutable ledger entry.
type CheckIn struct {
	ID          string
	UserID      string
	CompanyID   *string
	PartnerID   string
	PartnerName string
	PartnerType partner.Type
	Timestamp   time.Time
	// QRToken is the ID of the token redeemed for this check-in.
	QRToken string
}

// Usage aggregates one user's check-ins since a point in time.
type Usage struct {
	UserID      string
	CheckIns    int
	LastCheckIn *time.Time
}

// DailyCount is the number of check-ins on one calendar day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stream event names published for a user's open QR token streams.
const (
	EventTick       = "tick"
	EventExpired    = "expired"
	EventConsumed   = "consumed"
	EventSuperseded = "superseded"
)
