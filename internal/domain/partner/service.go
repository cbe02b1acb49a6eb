package partner

import "context"

type PartnerService interface {
	// ListApproved is the public directory: approved partners only.
	ListApproved(ctx context.Context, query ListPartnersQuery) ([]PartnerResponse, error)
	GetApproved(ctx context.Context, id string) (PartnerResponse, error)

	List(ctx context.Context, query ListPartnersQuery) ([]PartnerResponse, error)
	Create(ctx context.Context, req CreatePartnerRequest) (PartnerResponse, error)
	Update(ctx context.Context, req UpdatePartnerRequest) (PartnerResponse, error)
	Delete(ctx context.Context, id string) error
	// UpdateStatus applies a status transition. Re-applying the current status succeeds.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (PartnerResponse, error)
	RotateTerminalKey(ctx context.Context, id string) (TerminalKeyResponse, error)
	// AuthenticateTerminal checks a terminal key and returns the approved partner.
	AuthenticateTerminal(ctx context.Context, partnerID, key string) (Partner, error)
}
