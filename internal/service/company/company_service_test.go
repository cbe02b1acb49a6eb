package company

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/repository/memory"
)

func newCompanyService(t *testing.T) (company.CompanyService, user.UserRepository) {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	return NewCompanyService(store, memory.NewCompanyRepository(store), users), users
}

func TestCompanyService_Create_Success(t *testing.T) {
	svc, _ := newCompanyService(t)

	resp, err := svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Acme", Code: " acme ", AdminEmail: "HR@Acme.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ACME", resp.Code)
	assert.Equal(t, "hr@acme.test", resp.AdminEmail)
	assert.Equal(t, string(company.StatusActive), resp.Status)
	assert.Equal(t, 1, resp.Version)

	_, err = svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Acme 2", Code: "ACME", AdminEmail: "x@acme.test"})
	assert.ErrorIs(t, err, company.ErrCompanyCodeExists)
}

func TestCompanyService_Update_PartialFields(t *testing.T) {
	svc, _ := newCompanyService(t)
	created, err := svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Acme", Code: "ACME", AdminEmail: "hr@acme.test"})
	require.NoError(t, err)

	name := "Acme Corp"
	updated, err := svc.Update(t.Context(), company.UpdateCompanyRequest{ID: created.ID, Name: &name, Version: created.Version})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "hr@acme.test", updated.AdminEmail)
	assert.Equal(t, 2, updated.Version)

	status := "inactive"
	_, err = svc.Update(t.Context(), company.UpdateCompanyRequest{ID: created.ID, Status: &status, Version: created.Version})
	assert.ErrorIs(t, err, company.ErrCompanyVersionConflict)

	_, err = svc.Update(t.Context(), company.UpdateCompanyRequest{ID: "missing", Status: &status, Version: 1})
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestCompanyService_List_CountsEmployees(t *testing.T) {
	svc, users := newCompanyService(t)
	acme, err := svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Acme", Code: "ACME", AdminEmail: "hr@acme.test"})
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Beta", Code: "BETA", AdminEmail: "hr@beta.test"})
	require.NoError(t, err)

	for _, email := range []string{"a@acme.test", "b@acme.test"} {
		_, err := users.Create(t.Context(), user.User{Email: email, Name: "E", Role: user.RoleEmployee, CompanyID: &acme.ID, Status: user.StatusActive})
		require.NoError(t, err)
	}

	list, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)

	counts := map[string]int64{}
	for _, c := range list {
		counts[c.Code] = c.EmployeeCount
	}
	assert.Equal(t, int64(2), counts["ACME"])
	assert.Equal(t, int64(0), counts["BETA"])
}

func TestCompanyService_Delete(t *testing.T) {
	svc, users := newCompanyService(t)
	acme, err := svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Acme", Code: "ACME", AdminEmail: "hr@acme.test"})
	require.NoError(t, err)
	empty, err := svc.Create(t.Context(), company.CreateCompanyRequest{Name: "Empty", Code: "EMPTY", AdminEmail: "hr@empty.test"})
	require.NoError(t, err)

	_, err = users.Create(t.Context(), user.User{Email: "a@acme.test", Name: "A", Role: user.RoleEmployee, CompanyID: &acme.ID, Status: user.StatusActive})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(t.Context(), acme.ID), company.ErrCompanyInUse)
	require.NoError(t, svc.Delete(t.Context(), empty.ID))

	_, err = svc.Get(t.Context(), empty.ID)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
	assert.ErrorIs(t, svc.Delete(t.Context(), empty.ID), company.ErrCompanyNotFound)
}
