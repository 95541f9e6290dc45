package http

import (
	"encoding/json"
	"net/http"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/pkg/httpx"
)

// UsersHandler owns the admin user-management endpoints.
type UsersHandler struct {
	UsersService *service.UsersService
}

type createUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Active    *bool   `json:"is_active"`
}

type assignEntitlementRequest struct {
	EntitlementID string `json:"entitlement_id"`
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UsersService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponses(users))
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UsersService.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user.User, user.Entitlements))
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.UsersService.Create(ctx, httpx.UsernameFromContext(ctx), service.CreateUserParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user, nil))
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.UsersService.Update(ctx, httpx.UsernameFromContext(ctx), r.PathValue("username"), domain.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Active:    req.Active,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user, nil))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.UsersService.Delete(ctx, httpx.UsernameFromContext(ctx), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *UsersHandler) HandleAssignEntitlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assignEntitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntitlementID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	err := h.UsersService.AssignEntitlement(ctx,
		httpx.UsernameFromContext(ctx), r.PathValue("username"), req.EntitlementID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entitlement assigned"})
}

func (h *UsersHandler) HandleRevokeEntitlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.UsersService.RevokeEntitlement(ctx,
		httpx.UsernameFromContext(ctx), r.PathValue("username"), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entitlement revoked"})
}
