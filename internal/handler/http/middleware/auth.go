package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/wellpass/wellpass-backend/internal/domain/session"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
)

// AuthRequired turns the access token verified by jwtauth.Verifier into a session.Session.
// Requests without a valid access token are answered with 401 and the login path.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, session.ErrUnauthenticated)
			return
		}

		sess, ok := sessionFromClaims(claims)
		if !ok {
			response.HandleError(w, session.ErrUnauthenticated)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

func sessionFromClaims(claims map[string]interface{}) (*session.Session, bool) {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != jwt.TokenTypeAccess {
		return nil, false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, false
	}
	role, ok := claims["role"].(string)
	if !ok || !user.Role(role).Valid() {
		return nil, false
	}

	sess := &session.Session{UserID: userID, Role: user.Role(role)}
	sess.Email, _ = claims["email"].(string)
	if companyID, ok := claims["company_id"].(string); ok && companyID != "" {
		sess.CompanyID = &companyID
	}
	return sess, true
}
