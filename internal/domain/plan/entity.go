package plan

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierClubPlus Tier = "club_plus"
	TierDigital  Tier = "digital"
)

var AllTiers = []Tier{TierBronze, TierSilver, TierGold, TierClubPlus, TierDigital}

func (t Tier) Valid() bool {
	return slices.Contains(AllTiers, t)
}

type Plan struct {
	ID               string
	Tier             Tier
	Name             string
	MonthlyPrice     decimal.Decimal
	CheckInsPerMonth int
	// IncludedCategories lists the partner types the plan covers. Empty means all.
	IncludedCategories []partner.Type
	Description        string
	Notes              *string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Includes reports whether members of the plan may check in at a partner of type t.
func (p *Plan) Includes(t partner.Type) bool {
	return len(p.IncludedCategories) == 0 || slices.Contains(p.IncludedCategories, t)
}
