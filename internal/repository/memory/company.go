package memory

import (
	"context"
	"sort"

	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

type companyRepository struct {
	s *Store
}

func NewCompanyRepository(s *Store) company.CompanyRepository {
	return &companyRepository{s: s}
}

func copyCompany(c company.Company) company.Company {
	c.BillingDetails = cloneString(c.BillingDetails)
	return c
}

func (r *companyRepository) Create(ctx context.Context, c company.Company) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.companies {
		if existing.Code == c.Code {
			return company.Company{}, company.ErrCompanyCodeExists
		}
	}
	if c.ID == "" {
		c.ID = ids.NewUUID()
	}
	if c.Status == "" {
		c.Status = company.StatusActive
	}
	now := r.s.now()
	c.Version = 1
	c.CreatedAt, c.UpdatedAt = now, now

	r.s.companies[c.ID] = copyCompany(c)
	return copyCompany(c), nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return copyCompany(c), nil
}

func (r *companyRepository) GetByCode(ctx context.Context, code string) (company.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.companies {
		if c.Code == code {
			return copyCompany(c), nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

func (r *companyRepository) List(ctx context.Context) ([]company.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]company.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		out = append(out, copyCompany(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *companyRepository) Update(ctx context.Context, c company.Company, expectedVersion int) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.companies[c.ID]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	if stored.Version != expectedVersion {
		return company.Company{}, company.ErrCompanyVersionConflict
	}
	c.Code = stored.Code
	c.CreatedAt = stored.CreatedAt
	c.Version = stored.Version + 1
	c.UpdatedAt = r.s.now()

	r.s.companies[c.ID] = copyCompany(c)
	return copyCompany(c), nil
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.companies[id]; !ok {
		return company.ErrCompanyNotFound
	}
	delete(r.s.companies, id)
	return nil
}

func (r *companyRepository) CountActive(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.companies {
		if c.Status == company.StatusActive {
			n++
		}
	}
	return n, nil
}
