package user

import (
	"context"
)

// UserRepository stores users. Emails are compared case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// ListByCompany returns the users of a company ordered by name.
	ListByCompany(ctx context.Context, companyID string) ([]User, error)
	CountActive(ctx context.Context) (int64, error)
	CountByCompany(ctx context.Context, companyID string) (int64, error)
	CountByPlan(ctx context.Context, planID string) (int64, error)
	UpdateProfile(ctx context.Context, id string, name string) (User, error)
	UpdatePlan(ctx context.Context, id string, planID *string, status Status) (User, error)
	UpdateStatus(ctx context.Context, id string, status Status) (User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	// ActivateInvited turns an invited user into an active one.
	ActivateInvited(ctx context.Context, id string, name string, passwordHash *string) (User, error)
	LinkGoogleAccount(ctx context.Context, id string, googleID string) (User, error)
}
