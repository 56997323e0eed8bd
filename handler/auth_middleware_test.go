package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-api/model"
	"storefront-api/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, role model.Role) (string, uuid.UUID) {
	t.Helper()
	user := &model.User{ID: uuid.New(), Email: "a@x.com", Username: "alice", Role: string(role)}
	token, _, err := service.NewTokenIssuer(testTokenConfig).Issue(user)
	require.NoError(t, err)
	return token, user.ID
}

func TestAuthMiddleware(t *testing.T) {
	var gotID uuid.UUID
	var gotRole string
	protected := NewAuthMiddleware(testTokenConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(UserIDKey).(uuid.UUID)
		gotRole, _ = r.Context().Value(UserRoleKey).(string)
		w.WriteHeader(http.StatusOK)
	}))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		return rr
	}

	t.Run("valid token", func(t *testing.T) {
		token, id := issueToken(t, model.RoleUser)

		rr := call("Bearer " + token)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, id, gotID)
		assert.Equal(t, "user", gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		token, _ := issueToken(t, model.RoleUser)
		assert.Equal(t, http.StatusUnauthorized, call("Basic "+token).Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		token, _ := issueToken(t, model.RoleUser)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token+"x").Code)
	})

	t.Run("different audience", func(t *testing.T) {
		cfg := testTokenConfig
		cfg.Audience = "other"
		token, _, err := service.NewTokenIssuer(cfg).Issue(&model.User{ID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})

	t.Run("expired", func(t *testing.T) {
		cfg := testTokenConfig
		cfg.TTL = -time.Minute
		token, _, err := service.NewTokenIssuer(cfg).Issue(&model.User{ID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	h := NewAuthMiddleware(testTokenConfig)(AdminMiddleware(http.HandlerFunc(AdminPing)))

	for role, want := range map[model.Role]int{model.RoleAdmin: http.StatusOK, model.RoleUser: http.StatusForbidden} {
		token, _ := issueToken(t, role)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, want, rr.Code, "role %s", role)
	}
}
