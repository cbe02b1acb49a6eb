package middleware

import (
	"context"
	"net/http"

	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/handler/http/response"
)

const (
	HeaderPartnerID   = "X-Partner-ID"
	HeaderTerminalKey = "X-Terminal-Key"
)

type terminalKey struct{}

// TerminalAuth authenticates partner terminals by partner ID and terminal key.
func TerminalAuth(partners partner.PartnerService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			partnerID := r.Header.Get(HeaderPartnerID)
			key := r.Header.Get(HeaderTerminalKey)
			if partnerID == "" || key == "" {
				response.HandleError(w, partner.ErrInvalidTerminalKey)
				return
			}

			p, err := partners.AuthenticateTerminal(r.Context(), partnerID, key)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), terminalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TerminalPartner returns the partner authenticated by TerminalAuth.
func TerminalPartner(ctx context.Context) (partner.Partner, bool) {
	p, ok := ctx.Value(terminalKey{}).(partner.Partner)
	return p, ok
}
