package http

import (
	"net/http"
	"strconv"

	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/pkg/httpx"
)

// AuditHandler serves the read side of the audit trail.
type AuditHandler struct {
	AuditService *service.AuditService
}

// ServeHTTP returns the most recent audit records, newest first. The optional
// ?limit= parameter is clamped by the service; anything unparseable falls back
// to the maximum.
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	recs, err := h.AuditService.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAuditRecordResponses(recs))
}
