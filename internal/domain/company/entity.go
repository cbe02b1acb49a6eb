package company

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Company struct {
	ID             string
	Name           string
	Code           string
	AdminEmail     string
	BillingDetails *string
	Status         Status
	// Version increases on every update and guards against lost writes.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}
