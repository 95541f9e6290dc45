package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/pkg/httpx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// LoginHandler owns the credential exchange endpoints. A successful login
// returns the session token in the body and additionally sets it as an
// httpOnly cookie so browser clients never touch the raw token.
type LoginHandler struct {
	TokenService *service.TokenService

	// CookieSecure marks the session cookie Secure. Leave false only for
	// plain-HTTP local development.
	CookieSecure bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUserResponse struct {
	userResponse
	Roles []string `json:"roles"`
}

type loginResponse struct {
	User  loginUserResponse `json:"user"`
	Token string            `json:"token"`
}

func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	session, err := h.TokenService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	log.Info("login succeeded", "username", session.User.Username)

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		User: loginUserResponse{
			userResponse: toUserResponse(session.User, nil),
			Roles:        session.Roles,
		},
		Token: session.Token,
	})
}

// HandleLogout clears the session cookie. Issued tokens stay valid until
// expiry; there is no server-side revocation list.
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
