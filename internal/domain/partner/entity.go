package partner

import "time"

// Type is the partner category a plan can include.
type Type string

const (
	TypeGym     Type = "gym"
	TypeSpa     Type = "spa"
	TypeClub    Type = "club"
	TypeDigital Type = "digital"
)

var AllTypes = []Type{TypeGym, TypeSpa, TypeClub, TypeDigital}

func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusSuspended},
	StatusSuspended: {StatusApproved},
}

// CanTransition reports whether a partner may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Partner struct {
	ID        string
	Name      string
	Type      Type
	City      string
	Address   string
	Latitude  float64
	Longitude float64
	Rating    float64
	OpenHours *string
	ImageURL  *string
	Status    Status
	// TerminalKeyHash is the bcrypt hash of the key partner terminals authenticate with.
	TerminalKeyHash *string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Partner) IsApproved() bool {
	return p.Status == StatusApproved
}
