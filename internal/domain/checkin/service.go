package checkin

import (
	"context"
	"time"
)

type CheckInService interface {
	// IssueToken creates a fresh token for the session user and supersedes older ones.
	IssueToken(ctx context.Context) (QRTokenResponse, error)
	// GetToken returns a token owned by the session user.
	GetToken(ctx context.Context, tokenID string) (Token, error)
	// Record redeems a token at a partner and appends the ledger entry atomically.
	Record(ctx context.Context, req RecordCheckInRequest) (CheckIn, error)
	ListForUser(ctx context.Context, userID string) ([]CheckIn, error)
	ListForCompany(ctx context.Context, companyID string, since time.Time) ([]Usage, error)
	Quota(ctx context.Context, userID string) (QuotaResponse, error)
	// RenderPass returns a printable PDF of the session user's live token.
	RenderPass(ctx context.Context) ([]byte, error)
	PurgeStaleTokens(ctx context.Context) (int64, error)
}
