package http

import (
	"errors"
	"net/http"

	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/pkg/httpx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// writeServiceError translates service errors into caller-visible statuses
// with generic messages. Internal detail stays in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")

	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request")

	case errors.Is(err, service.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "User already exists or invalid data")

	case errors.Is(err, service.ErrDuplicateEntitlement):
		writeError(w, http.StatusBadRequest, "Entitlement already exists")

	case errors.Is(err, service.ErrDuplicateGrant):
		writeError(w, http.StatusBadRequest, "Entitlement already assigned")

	case errors.Is(err, service.ErrEntitlementInUse):
		writeError(w, http.StatusBadRequest, "Cannot delete assigned entitlement")

	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")

	case errors.Is(err, service.ErrEntitlementNotFound):
		writeError(w, http.StatusNotFound, "Entitlement not found")

	case errors.Is(err, service.ErrGrantNotFound):
		writeError(w, http.StatusNotFound, "Entitlement not assigned")

	case errors.Is(err, service.ErrUnavailable):
		log.Error("store unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")

	default:
		log.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	httpx.WriteJSON(w, code, map[string]string{"error": msg})
}
