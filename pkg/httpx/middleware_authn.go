package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/doorman-auth/doorman/pkg/jwtx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// SessionCookieName is the cookie carrying the session token. The same token
// is alternatively accepted as a bearer header; the cookie wins when both are
// present.
const SessionCookieName = "token"

// AuthnMiddleware authenticates the caller from the session cookie or bearer
// header and attaches the verified claims to the request context. Requests
// without a verifiable token are terminated with 401 before reaching the
// downstream handler.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := ExtractToken(r)
			if raw == "" {
				writeAuthnError(w)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				// The reason stays in the logs; the caller only learns 401.
				log.Warn("session verify failed", "err", err)
				writeAuthnError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// ExtractToken pulls the raw session token from the request: the session
// cookie first, then the Authorization bearer header. Returns "" when neither
// is present.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Username)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

func writeAuthnError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}
