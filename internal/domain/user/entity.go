package user

import "time"

type Role string

const (
	RoleEmployee      Role = "employee"       // Member of a company plan
	RoleCompanyAdmin  Role = "company_admin"  // HR of one company
	RolePlatformAdmin Role = "platform_admin" // Curates partners, plans and companies
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleCompanyAdmin, RolePlatformAdmin:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusInvited  Status = "invited"
)

// User is never hard-deleted and its role never changes after creation.
type User struct {
	ID              string
	Email           string
	Name            string
	Role            Role
	CompanyID       *string
	PlanID          *string
	Status          Status
	PasswordHash    *string
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) HasPlan() bool {
	return u.PlanID != nil && *u.PlanID != ""
}

// BelongsTo reports whether the user is attached to companyID.
func (u *User) BelongsTo(companyID string) bool {
	return u.CompanyID != nil && *u.CompanyID == companyID
}
