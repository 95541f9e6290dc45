package http

import (
	"encoding/json"
	"net/http"

	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/pkg/httpx"
)

// EntitlementsHandler owns the entitlement catalogue endpoints. Listing is
// open to any authenticated caller; create and delete are admin-gated by the
// route chain.
type EntitlementsHandler struct {
	EntitlementsService *service.EntitlementsService
}

type createEntitlementRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *EntitlementsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ents, err := h.EntitlementsService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntitlementResponses(ents))
}

func (h *EntitlementsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createEntitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ent, err := h.EntitlementsService.Create(ctx,
		httpx.UsernameFromContext(ctx), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toEntitlementResponse(ent))
}

func (h *EntitlementsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.EntitlementsService.Delete(ctx,
		httpx.UsernameFromContext(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entitlement deleted"})
}
