package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/server/middleware"
)

func requestWithRole(role domain.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	u := &domain.User{ID: uuid.New(), Role: role, Active: true}
	return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, u))
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		allowed  []domain.Role
		req      *http.Request
		wantCode int
	}{
		{
			name:     "matching_role_passes",
			allowed:  []domain.Role{domain.RoleAdmin},
			req:      requestWithRole(domain.RoleAdmin),
			wantCode: http.StatusOK,
		},
		{
			name:     "one_of_several_roles_passes",
			allowed:  []domain.Role{domain.RoleAuditor, domain.RoleReviewer},
			req:      requestWithRole(domain.RoleReviewer),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong_role_forbidden",
			allowed:  []domain.Role{domain.RoleAdmin},
			req:      requestWithRole(domain.RoleAuditor),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "viewer_forbidden_from_admin_routes",
			allowed:  []domain.Role{domain.RoleAdmin},
			req:      requestWithRole(domain.RoleViewer),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "no_user_in_context_unauthorized",
			allowed:  []domain.Role{domain.RoleAdmin},
			req:      httptest.NewRequest(http.MethodGet, "/", nil),
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			middleware.RequireRole(tt.allowed...)(next).ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	middleware.RequireAdmin()(next).ServeHTTP(rec, requestWithRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	middleware.RequireAdmin()(next).ServeHTTP(rec, requestWithRole(domain.RoleReviewer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
