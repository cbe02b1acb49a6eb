package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/repository/memory"
)

func newPartnerService(t *testing.T) (partner.PartnerService, partner.PartnerRepository) {
	t.Helper()
	repo := memory.NewPartnerRepository(memory.NewStore())
	return NewPartnerService(repo), repo
}

func TestPartnerService_Create_IsPending(t *testing.T) {
	svc, _ := newPartnerService(t)

	p, err := svc.Create(t.Context(), partner.CreatePartnerRequest{
		Name: " Iron Gym ", Type: "gym", City: "Jakarta", Latitude: -6.2, Longitude: 106.8, Rating: 4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Iron Gym", p.Name)
	assert.Equal(t, string(partner.StatusPending), p.Status)
	assert.False(t, p.HasTerminal)

	_, err = svc.GetApproved(t.Context(), p.ID)
	assert.ErrorIs(t, err, partner.ErrPartnerNotFound, "pending partners are hidden from the directory")
}

func TestPartnerService_UpdateStatus_Idempotent(t *testing.T) {
	svc, _ := newPartnerService(t)
	p, err := svc.Create(t.Context(), partner.CreatePartnerRequest{Name: "Iron Gym", Type: "gym", City: "Jakarta"})
	require.NoError(t, err)

	approved, err := svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: p.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	again, err := svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: p.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, approved.Version, again.Version)

	_, err = svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: p.ID, Status: "rejected"})
	assert.ErrorIs(t, err, partner.ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: "missing", Status: "approved"})
	assert.ErrorIs(t, err, partner.ErrPartnerNotFound)
}

func TestPartnerService_ListApproved_ByDistance(t *testing.T) {
	svc, repo := newPartnerService(t)
	ctx := t.Context()

	// Monas, Jakarta.
	lat, lng := -6.1754, 106.8272
	seed := []partner.Partner{
		{Name: "Near", Type: partner.TypeGym, City: "Jakarta", Latitude: -6.1800, Longitude: 106.8300, Status: partner.StatusApproved},
		{Name: "Close", Type: partner.TypeSpa, City: "Jakarta", Latitude: -6.2000, Longitude: 106.8450, Status: partner.StatusApproved},
		{Name: "Bandung", Type: partner.TypeGym, City: "Bandung", Latitude: -6.9175, Longitude: 107.6191, Status: partner.StatusApproved},
		{Name: "Hidden", Type: partner.TypeGym, City: "Jakarta", Latitude: -6.1760, Longitude: 106.8280, Status: partner.StatusPending},
	}
	for _, p := range seed {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	radius := 10.0
	list, err := svc.ListApproved(ctx, partner.ListPartnersQuery{Lat: &lat, Lng: &lng, RadiusKm: &radius})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Near", list[0].Name)
	assert.Equal(t, "Close", list[1].Name)
	require.NotNil(t, list[0].DistanceKm)
	assert.Less(t, *list[0].DistanceKm, 1.0)

	gyms, err := svc.ListApproved(ctx, partner.ListPartnersQuery{Type: "gym"})
	require.NoError(t, err)
	require.Len(t, gyms, 2)
	assert.Nil(t, gyms[0].DistanceKm)

	all, err := svc.List(ctx, partner.ListPartnersQuery{City: "Jakarta"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPartnerService_Update_KeepsStatus(t *testing.T) {
	svc, _ := newPartnerService(t)
	p, err := svc.Create(t.Context(), partner.CreatePartnerRequest{Name: "Iron Gym", Type: "gym", City: "Jakarta"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: p.ID, Status: "approved"})
	require.NoError(t, err)

	current, err := svc.GetApproved(t.Context(), p.ID)
	require.NoError(t, err)

	rating := 4.9
	updated, err := svc.Update(t.Context(), partner.UpdatePartnerRequest{ID: p.ID, Rating: &rating, Version: current.Version})
	require.NoError(t, err)
	assert.Equal(t, 4.9, updated.Rating)
	assert.Equal(t, "approved", updated.Status)

	_, err = svc.Update(t.Context(), partner.UpdatePartnerRequest{ID: p.ID, Rating: &rating, Version: current.Version})
	assert.ErrorIs(t, err, partner.ErrPartnerVersionConflict)
}

func TestPartnerService_TerminalKey(t *testing.T) {
	svc, _ := newPartnerService(t)
	p, err := svc.Create(t.Context(), partner.CreatePartnerRequest{Name: "Iron Gym", Type: "gym", City: "Jakarta"})
	require.NoError(t, err)

	key, err := svc.RotateTerminalKey(t.Context(), p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, key.TerminalKey)

	_, err = svc.AuthenticateTerminal(t.Context(), p.ID, key.TerminalKey)
	assert.ErrorIs(t, err, partner.ErrPartnerNotApproved)

	_, err = svc.UpdateStatus(t.Context(), partner.UpdateStatusRequest{ID: p.ID, Status: "approved"})
	require.NoError(t, err)

	authed, err := svc.AuthenticateTerminal(t.Context(), p.ID, key.TerminalKey)
	require.NoError(t, err)
	assert.Equal(t, p.ID, authed.ID)

	_, err = svc.AuthenticateTerminal(t.Context(), p.ID, "wrong")
	assert.ErrorIs(t, err, partner.ErrInvalidTerminalKey)
	_, err = svc.AuthenticateTerminal(t.Context(), "missing", key.TerminalKey)
	assert.ErrorIs(t, err, partner.ErrInvalidTerminalKey)

	rotated, err := svc.RotateTerminalKey(t.Context(), p.ID)
	require.NoError(t, err)
	_, err = svc.AuthenticateTerminal(t.Context(), p.ID, key.TerminalKey)
	assert.ErrorIs(t, err, partner.ErrInvalidTerminalKey, "old key stops working after rotation")
	_, err = svc.AuthenticateTerminal(t.Context(), p.ID, rotated.TerminalKey)
	assert.NoError(t, err)
}
