package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doorman-auth/doorman/internal/access/service"
	"github.com/doorman-auth/doorman/internal/access/store/drivers/sqlite"
	"github.com/doorman-auth/doorman/pkg/httpx"
	"github.com/doorman-auth/doorman/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// newTestRouter assembles the full stack on a throwaway database seeded with
// the default accounts (admin/admin-pw holds every entitlement, user/user-pw
// holds the basics).
func newTestRouter(t *testing.T) *Router {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	bootstrap := &service.BootstrapService{Store: s}
	require.NoError(t, bootstrap.EnsureSeed(context.Background(), "admin-pw", "user-pw"))

	signer := jwtx.NewHS256([]byte("test-secret"), "doorman-test")

	r := NewRouter(signer, "test", false, s, slog.Default())
	r.TokenService = &service.TokenService{
		Store:      s,
		Signer:     signer,
		Issuer:     "doorman-test",
		SessionTTL: time.Hour,
	}
	r.UsersService = &service.UsersService{Store: s}
	r.EntitlementsService = &service.EntitlementsService{Store: s}
	r.AuditService = &service.AuditService{Store: s}
	r.ApplyRoutes()

	return r
}

func doJSON(t *testing.T, r *Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r *Router, username, password string) (string, *httptest.ResponseRecorder) {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := doJSON(t, r, http.MethodPost, "/auth/login", "", body)
	if rec.Code != http.StatusOK {
		return "", rec
	}

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpx.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials return token and cookie", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		token, rec := login(t, r, "admin", "admin-pw")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, token)

		var resp struct {
			User struct {
				Username string   `json:"username"`
				Roles    []string `json:"roles"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "admin", resp.User.Username)
		require.Contains(t, resp.User.Roles, "ROLE_ADMIN")

		c := sessionCookie(rec)
		require.NotNil(t, c)
		require.Equal(t, token, c.Value)
		require.True(t, c.HttpOnly)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		_, rec := login(t, r, "admin", "wrong")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Nil(t, sessionCookie(rec))
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/auth/login", "", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/auth/logout", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		c := sessionCookie(rec)
		require.NotNil(t, c)
		require.Empty(t, c.Value)
		require.True(t, c.Expires.Before(time.Now()))
	})
}

func TestSessionTransport(t *testing.T) {
	t.Parallel()

	t.Run("cookie is accepted in place of the bearer header", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		token, _ := login(t, r, "user", "user-pw")

		req := httptest.NewRequest(http.MethodGet, "/api/entitlements", nil)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no token is 401", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		rec := doJSON(t, r, http.MethodGet, "/api/entitlements", "", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		t.Parallel()
		r := newTestRouter(t)

		rec := doJSON(t, r, http.MethodGet, "/api/entitlements", "not-a-jwt", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminGating(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	adminToken, _ := login(t, r, "admin", "admin-pw")
	userToken, _ := login(t, r, "user", "user-pw")

	adminRoutes := []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/users"},
		{http.MethodGet, "/api/users/user"},
		{http.MethodGet, "/api/audit-logs"},
		{http.MethodPost, "/api/entitlements"},
	}

	for _, route := range adminRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := doJSON(t, r, route.method, route.path, userToken, "")
			require.Equal(t, http.StatusForbidden, rec.Code)

			rec = doJSON(t, r, route.method, route.path, "", "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("entitlement listing only needs authentication", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/entitlements", userToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin passes the gate", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/users", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestEntitlementLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	adminToken, _ := login(t, r, "admin", "admin-pw")

	var created entitlementResponse

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/entitlements", adminToken,
			`{"name":"Server Room","description":"Physical access"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)
	})

	t.Run("duplicate create is 400", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/entitlements", adminToken,
			`{"name":"Server Room"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("appears in the listing", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/entitlements", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var ents []entitlementResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ents))

		names := make([]string, 0, len(ents))
		for _, e := range ents {
			names = append(names, e.Name)
		}
		require.Contains(t, names, "Server Room")
	})

	t.Run("assigned entitlement refuses deletion", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/users/user/entitlements", adminToken,
			fmt.Sprintf(`{"entitlement_id":%q}`, created.ID))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodDelete, "/api/entitlements/"+created.ID, adminToken, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deletable once revoked", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/api/users/user/entitlements/"+created.ID, adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodDelete, "/api/entitlements/"+created.ID, adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("deleting it again is 404", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/api/entitlements/"+created.ID, adminToken, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	adminToken, _ := login(t, r, "admin", "admin-pw")

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/users", adminToken,
			`{"username":"carol","password":"pw","first_name":"Carol","email":"carol@example.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var u userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
		require.Equal(t, "carol", u.Username)
		require.True(t, u.Active)

		// The hash must never appear in the payload.
		require.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate username is 400", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/users", adminToken,
			`{"username":"carol","password":"pw"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get includes entitlements", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/users/user", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var u userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
		require.Len(t, u.Entitlements, 2)
	})

	t.Run("update patches profile", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/users/carol", adminToken,
			`{"last_name":"Jones","is_active":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var u userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
		require.Equal(t, "Carol", u.FirstName)
		require.Equal(t, "Jones", u.LastName)
		require.False(t, u.Active)
	})

	t.Run("deactivated user cannot log in", func(t *testing.T) {
		_, rec := login(t, r, "carol", "pw")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodDelete, "/api/users/carol", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/api/users/carol", adminToken, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuditLogEndpoint(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	adminToken, _ := login(t, r, "admin", "admin-pw")

	// Two mutations, then read the trail back.
	rec := doJSON(t, r, http.MethodPost, "/api/entitlements", adminToken, `{"name":"First"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/api/users", adminToken, `{"username":"dave","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/audit-logs", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var recs []auditRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 2)

	// Newest first, each attributed to the acting admin.
	require.Equal(t, "USER", recs[0].TargetType)
	require.Equal(t, "ENTITLEMENT", recs[1].TargetType)
	for _, rr := range recs {
		require.Equal(t, "admin", rr.Actor)
		require.Equal(t, "CREATE", rr.Action)
	}

	t.Run("limit parameter", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/audit-logs?limit=1", adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var limited []auditRecordResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limited))
		require.Len(t, limited, 1)
		require.Equal(t, "USER", limited[0].TargetType)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/livez", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("readyz", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/readyz", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/metrics", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
