package company

import "context"

type CompanyService interface {
	List(ctx context.Context) ([]CompanyResponse, error)
	Get(ctx context.Context, id string) (CompanyResponse, error)
	Create(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	Update(ctx context.Context, req UpdateCompanyRequest) (CompanyResponse, error)
	// Delete removes a company that has no users left.
	Delete(ctx context.Context, id string) error
}
