package checkin

import (
	"context"
	"time"
)

type TokenRepository interface {
	Create(ctx context.Context, t Token) error
	GetByID(ctx context.Context, id string) (Token, error)
	// GetLiveByUser returns the user's unconsumed, unsuperseded, unexpired token.
	GetLiveByUser(ctx context.Context, userID string, now time.Time) (Token, error)
	// SupersedeLive marks every unconsumed, unsuperseded token of the user as superseded.
	SupersedeLive(ctx context.Context, userID string, at time.Time) (int64, error)
	// Consume marks the token consumed if it is still redeemable at `at`. A token that
	// is no longer redeemable yields ErrTokenConsumed.
	Consume(ctx context.Context, id string, at time.Time) error
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

type CheckInRepository interface {
	Append(ctx context.Context, c CheckIn) error
	// ListByUser returns the user's check-ins in recording order.
	ListByUser(ctx context.Context, userID string) ([]CheckIn, error)
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	// LastAtPartner returns the time of the user's latest check-in at the partner.
	LastAtPartner(ctx context.Context, userID, partnerID string) (time.Time, bool, error)
	UsageByCompany(ctx context.Context, companyID string, since time.Time) ([]Usage, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	// DailyCounts groups check-ins since `since` by calendar day in loc. Days without
	// check-ins are omitted.
	DailyCounts(ctx context.Context, since time.Time, loc *time.Location) ([]DailyCount, error)
}
