package middleware

import (
	"fmt"
	"net/http"
	"testing"

	"tenant-api/internal/model"
	"tenant-api/pkg/database"
	"tenant-api/pkg/jwtutil"
)

func seedTenantUser(t *testing.T, role string) (model.Tenant, model.User) {
	t.Helper()
	n := nextID()
	tenant := model.Tenant{
		Name:          fmt.Sprintf("mw-tenant-%d", n),
		Domain:        fmt.Sprintf("mw-%d.example.com", n),
		Configuration: model.DefaultTenantConfig(),
		Status:        model.StatusActive,
	}
	if err := database.GetDB().Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	user := model.User{
		TenantID: tenant.ID,
		Email:    fmt.Sprintf("mw-user-%d@example.com", n),
		Password: "irrelevant-hash",
		Name:     "Middleware User",
		Role:     role,
		Status:   model.StatusActive,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return tenant, user
}

var idCounter uint

func nextID() uint {
	idCounter++
	return idCounter
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	tenant, _ := seedTenantUser(t, model.RoleUser)

	c, rec := newRequest(nil)
	c.Set("tenant_id", tenant.ID)

	called := false
	if err := AuthMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must be 401, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	tenant, _ := seedTenantUser(t, model.RoleUser)

	c, rec := newRequest(map[string]string{"Authorization": "Bearer not.a.token"})
	c.Set("tenant_id", tenant.ID)

	called := false
	if err := AuthMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token must be 401, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddlewareCrossTenantToken(t *testing.T) {
	tenantA, userA := seedTenantUser(t, model.RoleUser)
	tenantB, _ := seedTenantUser(t, model.RoleUser)

	token, err := jwtutil.GenerateToken(userA.ID, tenantA.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// Token minted under tenant A, presented against tenant B's context
	c, rec := newRequest(map[string]string{"Authorization": "Bearer " + token})
	c.Set("tenant_id", tenantB.ID)

	called := false
	if err := AuthMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("cross-tenant token must be 401, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	tenant, user := seedTenantUser(t, model.RoleUser)

	token, err := jwtutil.GenerateToken(user.ID, tenant.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c, rec := newRequest(map[string]string{"Authorization": "Bearer " + token})
	c.Set("tenant_id", tenant.ID)

	called := false
	if err := AuthMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	if !called {
		t.Fatalf("expected handler to run, got %d: %s", rec.Code, rec.Body.String())
	}

	attached, ok := GetUser(c)
	if !ok || attached.ID != user.ID || attached.TenantID != tenant.ID {
		t.Fatalf("expected attached identity %d, got %+v (%v)", user.ID, attached, ok)
	}
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	_, user := seedTenantUser(t, model.RoleUser)

	c, rec := newRequest(nil)
	c.Set("user", user)

	called := false
	if err := RequireAdmin(okNext(&called))(c); err != nil {
		t.Fatalf("RequireAdmin: %v", err)
	}
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin must be 403, got %d (called=%v)", rec.Code, called)
	}
}

func TestRequireAdminRejectsMissingIdentity(t *testing.T) {
	c, rec := newRequest(nil)

	called := false
	if err := RequireAdmin(okNext(&called))(c); err != nil {
		t.Fatalf("RequireAdmin: %v", err)
	}
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("missing identity must be 403, got %d (called=%v)", rec.Code, called)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	_, admin := seedTenantUser(t, model.RoleAdmin)

	c, rec := newRequest(nil)
	c.Set("user", admin)

	called := false
	if err := RequireAdmin(okNext(&called))(c); err != nil {
		t.Fatalf("RequireAdmin: %v", err)
	}
	if !called {
		t.Fatalf("admin should pass, got %d: %s", rec.Code, rec.Body.String())
	}
}
