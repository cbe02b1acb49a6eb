package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusApproved, StatusSuspended},
		{StatusSuspended, StatusApproved},
		{StatusApproved, StatusApproved},
		{StatusRejected, StatusRejected},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]Status{
		{StatusRejected, StatusApproved},
		{StatusApproved, StatusPending},
		{StatusSuspended, StatusRejected},
		{StatusPending, StatusSuspended},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestListPartnersQuery_Validate(t *testing.T) {
	lat, lng, radius := -23.55, -46.63, 5.0

	q := ListPartnersQuery{Type: "gym", Lat: &lat, Lng: &lng, RadiusKm: &radius}
	assert.NoError(t, q.Validate())
	assert.True(t, q.HasLocation())

	partial := ListPartnersQuery{Lat: &lat}
	assert.Error(t, partial.Validate())

	badType := ListPartnersQuery{Type: "pool"}
	assert.Error(t, badType.Validate())
}
