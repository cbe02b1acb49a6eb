// Package session carries the authenticated identity of a request and decides route access.
package session

import (
	"context"
	"errors"
	"slices"

	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

// LoginPath is where clients send an unauthenticated user.
const LoginPath = "/auth/login"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
)

// Session is the explicit identity of one request, built from a verified access token.
type Session struct {
	UserID    string
	Email     string
	Role      user.Role
	CompanyID *string
}

// CompanyIDValue returns the company ID or "" for platform admins.
func (s *Session) CompanyIDValue() string {
	if s == nil || s.CompanyID == nil {
		return ""
	}
	return *s.CompanyID
}

type Decision int

const (
	DecisionAllow Decision = iota
	// DecisionLogin means no session: redirect to LoginPath.
	DecisionLogin
	// DecisionForbidden means a session whose role is not accepted.
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	case DecisionForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Authorize allows when requiredRoles is empty, asks for login when there is no session
// and forbids when the session role is not one of requiredRoles.
func Authorize(s *Session, requiredRoles []user.Role) Decision {
	if len(requiredRoles) == 0 {
		return DecisionAllow
	}
	if s == nil {
		return DecisionLogin
	}
	if slices.Contains(requiredRoles, s.Role) {
		return DecisionAllow
	}
	return DecisionForbidden
}

// Err converts a decision into the matching sentinel error, nil for allow.
func (d Decision) Err() error {
	switch d {
	case DecisionAllow:
		return nil
	case DecisionLogin:
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Require returns the request session or ErrUnauthenticated.
func Require(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s, nil
}
