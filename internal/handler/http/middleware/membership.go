package middleware

import (
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

// MembershipMiddleware re-checks the stored account behind an access token, so a user
// or company deactivated after login loses access before the token expires.
type MembershipMiddleware struct {
	users     user.UserRepository
	companies company.CompanyRepository
}

func NewMembershipMiddleware(users user.UserRepository, companies company.CompanyRepository) *MembershipMiddleware {
	return &MembershipMiddleware{
		users:     users,
		companies: companies,
	}
}

// RequireActiveMembership rejects sessions of inactive users and of users whose
// company is inactive. Invited users never hold a session.
func (m *MembershipMiddleware) RequireActiveMembership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.Require(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		u, err := m.users.GetByID(r.Context(), sess.UserID)
		if err != nil {
			response.HandleError(w, session.ErrUnauthenticated)
			return
		}
		if u.Status == user.StatusInactive {
			response.HandleError(w, user.ErrUserInactive)
			return
		}

		if companyID := sess.CompanyIDValue(); companyID != "" {
			c, err := m.companies.GetByID(r.Context(), companyID)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if c.Status != company.StatusActive {
				response.HandleError(w, auth.ErrCompanyInactive)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
