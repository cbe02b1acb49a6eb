package middleware

import (
	"log/slog"
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

// RequireRoles admits sessions whose role is one of roles. A missing session gets 401
// with the login path, a session with another role gets 403.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			decision := session.Authorize(sess, roles)
			if err := decision.Err(); err != nil {
				slog.Debug("route access denied", "path", r.URL.Path, "decision", decision.String())
				response.HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EmployeeOnly guards the token routes of /me.
var EmployeeOnly = RequireRoles(user.RoleEmployee)
