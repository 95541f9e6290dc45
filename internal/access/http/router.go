package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/internal/obs"
	"github.com/doorman-auth/doorman/pkg/httpx"
	"github.com/doorman-auth/doorman/pkg/jwtx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	cookieSecure bool
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	TokenService        *service.TokenService
	UsersService        *service.UsersService
	EntitlementsService *service.EntitlementsService
	AuditService        *service.AuditService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	cookieSecure bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		cookieSecure: cookieSecure,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerEntitlements()
	r.registerAudit()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// adminChain gates a handler behind authentication, the admin role and a
// per-user rate limit, in that order.
func (r *Router) adminChain(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(domain.RoleAdmin),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerAuth() {
	h := &LoginHandler{
		TokenService: r.TokenService,
		CookieSecure: r.cookieSecure,
	}

	// POST /auth/login - strict rate limit by IP (credential guessing)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UsersService: r.UsersService}

	r.Mux.Handle("GET /api/users", r.adminChain(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /api/users", r.adminChain(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /api/users/{username}", r.adminChain(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /api/users/{username}", r.adminChain(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /api/users/{username}", r.adminChain(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /api/users/{username}/entitlements", r.adminChain(http.HandlerFunc(h.HandleAssignEntitlement)))
	r.Mux.Handle("DELETE /api/users/{username}/entitlements/{id}", r.adminChain(http.HandlerFunc(h.HandleRevokeEntitlement)))
}

func (r *Router) registerEntitlements() {
	h := &EntitlementsHandler{EntitlementsService: r.EntitlementsService}

	// Listing is readable by any authenticated user; mutations are admin-only.
	r.Mux.Handle("GET /api/entitlements",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/entitlements", r.adminChain(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("DELETE /api/entitlements/{id}", r.adminChain(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService}

	r.Mux.Handle("GET /api/audit-logs", r.adminChain(h))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", obs.Handler())
}
