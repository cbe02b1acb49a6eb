package plan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
)

func TestPlanIncludes(t *testing.T) {
	all := Plan{}
	assert.True(t, all.Includes(partner.TypeSpa))

	digital := Plan{IncludedCategories: []partner.Type{partner.TypeDigital}}
	assert.True(t, digital.Includes(partner.TypeDigital))
	assert.False(t, digital.Includes(partner.TypeGym))
}

func TestCreatePlanRequest_Validate(t *testing.T) {
	ok := CreatePlanRequest{
		Tier:               "gold",
		Name:               "Gold",
		MonthlyPrice:       decimal.RequireFromString("89.90"),
		CheckInsPerMonth:   12,
		IncludedCategories: []string{"gym", "spa"},
	}
	assert.NoError(t, ok.Validate())

	bad := CreatePlanRequest{
		Tier:               "platinum",
		MonthlyPrice:       decimal.NewFromInt(-1),
		CheckInsPerMonth:   -1,
		IncludedCategories: []string{"pool"},
	}
	assert.Error(t, bad.Validate())
}
