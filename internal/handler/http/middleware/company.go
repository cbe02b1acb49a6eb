package middleware

import (
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/employee"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

// RequireCompany admits company admins whose session is bound to a company.
func RequireCompany(next http.Handler) http.Handler {
	return RequireRoles(user.RoleCompanyAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := session.FromContext(r.Context())
		if sess.CompanyIDValue() == "" {
			response.HandleError(w, employee.ErrNoCompany)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
