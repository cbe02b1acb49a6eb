package memory

import (
	"context"
	"sort"

	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

type partnerRepository struct {
	s *Store
}

func NewPartnerRepository(s *Store) partner.PartnerRepository {
	return &partnerRepository{s: s}
}

func copyPartner(p partner.Partner) partner.Partner {
	p.OpenHours = cloneString(p.OpenHours)
	p.ImageURL = cloneString(p.ImageURL)
	p.TerminalKeyHash = cloneString(p.TerminalKeyHash)
	return p
}

func (r *partnerRepository) Create(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = ids.NewUUID()
	}
	if p.Status == "" {
		p.Status = partner.StatusPending
	}
	now := r.s.now()
	p.Version = 1
	p.CreatedAt, p.UpdatedAt = now, now

	r.s.partners[p.ID] = copyPartner(p)
	return copyPartner(p), nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (partner.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.partners[id]
	if !ok {
		return partner.Partner{}, partner.ErrPartnerNotFound
	}
	return copyPartner(p), nil
}

func (r *partnerRepository) List(ctx context.Context, filter partner.Filter) ([]partner.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]partner.Partner, 0)
	for _, p := range r.s.partners {
		if filter.City != "" && p.City != filter.City {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, copyPartner(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *partnerRepository) Update(ctx context.Context, p partner.Partner, expectedVersion int) (partner.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.partners[p.ID]
	if !ok {
		return partner.Partner{}, partner.ErrPartnerNotFound
	}
	if stored.Version != expectedVersion {
		return partner.Partner{}, partner.ErrPartnerVersionConflict
	}
	p.Status = stored.Status
	p.TerminalKeyHash = stored.TerminalKeyHash
	p.CreatedAt = stored.CreatedAt
	p.Version = stored.Version + 1
	p.UpdatedAt = r.s.now()

	r.s.partners[p.ID] = copyPartner(p)
	return copyPartner(p), nil
}

func (r *partnerRepository) UpdateStatus(ctx context.Context, id string, status partner.Status) (partner.Partner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.partners[id]
	if !ok {
		return partner.Partner{}, partner.ErrPartnerNotFound
	}
	if !partner.CanTransition(p.Status, status) {
		return partner.Partner{}, partner.ErrInvalidStatusTransition
	}
	if p.Status == status {
		return copyPartner(p), nil
	}
	p.Status = status
	p.Version++
	p.UpdatedAt = r.s.now()

	r.s.partners[id] = p
	return copyPartner(p), nil
}

func (r *partnerRepository) SetTerminalKeyHash(ctx context.Context, id string, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.partners[id]
	if !ok {
		return partner.ErrPartnerNotFound
	}
	p.TerminalKeyHash = &hash
	p.UpdatedAt = r.s.now()
	r.s.partners[id] = p
	return nil
}

func (r *partnerRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.partners[id]; !ok {
		return partner.ErrPartnerNotFound
	}
	delete(r.s.partners, id)
	return nil
}
