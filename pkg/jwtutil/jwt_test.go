package jwtutil

import (
	"testing"

	"tenant-api/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 24})

	token, err := GenerateToken(7, 3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.TenantID != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 24})
	token, err := GenerateToken(1, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 24})
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("token signed with a different key must not validate")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: -1})
	token, err := GenerateToken(1, 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestUninitializedConfig(t *testing.T) {
	cfg = nil
	defer Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 24})

	if _, err := GenerateToken(1, 1); err == nil {
		t.Fatal("expected error without configuration")
	}
	if _, err := ValidateToken("anything"); err == nil {
		t.Fatal("expected error without configuration")
	}
}
