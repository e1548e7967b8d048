package middleware

import (
	"net/http"
	"testing"
)

func TestTenantMiddlewareMissingHeader(t *testing.T) {
	c, rec := newRequest(nil)

	called := false
	if err := TenantMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("TenantMiddleware: %v", err)
	}

	if called {
		t.Fatal("handler must not run without a tenant header")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTenantMiddlewareInvalidHeader(t *testing.T) {
	c, rec := newRequest(map[string]string{TenantHeader: "not-a-number"})

	called := false
	if err := TenantMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("TenantMiddleware: %v", err)
	}

	if called {
		t.Fatal("handler must not run with an unparsable tenant header")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTenantMiddlewareSetsAmbientTenant(t *testing.T) {
	c, rec := newRequest(map[string]string{TenantHeader: "42"})

	called := false
	if err := TenantMiddleware(okNext(&called))(c); err != nil {
		t.Fatalf("TenantMiddleware: %v", err)
	}

	if !called {
		t.Fatalf("handler should have run, got %d: %s", rec.Code, rec.Body.String())
	}
	tenantID, ok := GetTenantID(c)
	if !ok || tenantID != 42 {
		t.Fatalf("expected ambient tenant 42, got %d (%v)", tenantID, ok)
	}
}
