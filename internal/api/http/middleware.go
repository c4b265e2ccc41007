package http

import (
	"net/http"
	"strings"

	"rentacar-escrow-backend/internal/security"
)

// BearerTokenMiddleware lifts an Authorization: Bearer header into the
// request context for the gate. Requests without a token pass through;
// operations that need authorization fail inside the engine.
func BearerTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			r = r.WithContext(security.ContextWithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
