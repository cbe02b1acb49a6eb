package middleware

import (
	"math/rand/v2"
	"net/http"
	"time"
)

// SimulatedLatency delays each request by a random duration in [minDelay, maxDelay] to mimic a
// remote backend. A request whose context ends while waiting is dropped without a reply.
func SimulatedLatency(minDelay, maxDelay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			delay := minDelay
			if maxDelay > minDelay {
				delay += rand.N(maxDelay - minDelay + 1)
			}

			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-r.Context().Done():
				return
			case <-timer.C:
			}
			next.ServeHTTP(w, r)
		})
	}
}
