package httpx

import "net/http"

// RequireRole terminates the request with 403 unless the authenticated caller
// holds the named role. Must run after AuthnMiddleware in the chain; a request
// that never passed authentication carries no claims and is rejected.
func RequireRole(role string) Middleware {
	return RequireAnyRole(role)
}

// RequireAnyRole is RequireRole generalised to a set: the caller must hold at
// least one of the listed roles.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.HasAnyRole(roles...) {
				WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
