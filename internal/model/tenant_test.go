package model

import (
	"testing"
)

func TestDefaultTenantConfig(t *testing.T) {
	cfg := DefaultTenantConfig()

	if cfg.Theme.PrimaryColor != "#007bff" || cfg.Theme.Logo != "default-logo.png" {
		t.Fatalf("unexpected theme defaults: %+v", cfg.Theme)
	}
	if !cfg.Features.Analytics || cfg.Features.SocialLogin || cfg.Features.AdvancedSearch {
		t.Fatalf("unexpected feature defaults: %+v", cfg.Features)
	}
	if cfg.Limits.MaxUsers != 10 || cfg.Limits.MaxProducts != 100 || cfg.Limits.StorageLimit != 1024*1024*50 {
		t.Fatalf("unexpected limit defaults: %+v", cfg.Limits)
	}
}

func TestTenantConfigScanRoundTrip(t *testing.T) {
	original := DefaultTenantConfig()
	original.Theme.PrimaryColor = "#112233"
	original.Limits.MaxUsers = 3

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var fromBytes TenantConfig
	if err := fromBytes.Scan(value); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	if fromBytes != original {
		t.Fatalf("byte round trip mismatch: %+v", fromBytes)
	}

	var fromString TenantConfig
	if err := fromString.Scan(string(value.([]byte))); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if fromString != original {
		t.Fatalf("string round trip mismatch: %+v", fromString)
	}

	var cfg TenantConfig
	if err := cfg.Scan(3.14); err == nil {
		t.Fatal("scanning an unsupported type must fail")
	}
}
