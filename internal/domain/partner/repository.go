package partner

import "context"

type Filter struct {
	City   string
	Type   Type
	Status Status
}

type PartnerRepository interface {
	Create(ctx context.Context, p Partner) (Partner, error)
	GetByID(ctx context.Context, id string) (Partner, error)
	// List returns partners matching every non-empty filter field, ordered by name.
	List(ctx context.Context, filter Filter) ([]Partner, error)
	Update(ctx context.Context, p Partner, expectedVersion int) (Partner, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Partner, error)
	SetTerminalKeyHash(ctx context.Context, id string, hash string) error
	Delete(ctx context.Context, id string) error
}
