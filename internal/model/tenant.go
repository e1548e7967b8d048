package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TenantTheme holds per-tenant branding
type TenantTheme struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Logo           string `json:"logo"`
}

// TenantFeatures holds per-tenant feature flags
type TenantFeatures struct {
	Analytics      bool `json:"analytics"`
	SocialLogin    bool `json:"socialLogin"`
	AdvancedSearch bool `json:"advancedSearch"`
}

// TenantLimits holds per-tenant resource limits
type TenantLimits struct {
	MaxUsers     int   `json:"maxUsers"`
	MaxProducts  int   `json:"maxProducts"`
	StorageLimit int64 `json:"storageLimit"`
}

// TenantConfig is the tenant configuration block, persisted as a single jsonb column
type TenantConfig struct {
	Theme    TenantTheme    `json:"theme"`
	Features TenantFeatures `json:"features"`
	Limits   TenantLimits   `json:"limits"`
}

// DefaultTenantConfig returns the configuration applied to newly created tenants
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		Theme: TenantTheme{
			PrimaryColor:   "#007bff",
			SecondaryColor: "#6c757d",
			Logo:           "default-logo.png",
		},
		Features: TenantFeatures{
			Analytics:      true,
			SocialLogin:    false,
			AdvancedSearch: false,
		},
		Limits: TenantLimits{
			MaxUsers:     10,
			MaxProducts:  100,
			StorageLimit: 1024 * 1024 * 50, // 50MB
		},
	}
}

// Value implements driver.Valuer so gorm can persist the config as jsonb
func (c TenantConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for reading the jsonb column back
func (c *TenantConfig) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported type for TenantConfig: %T", value)
	}
}

// Tenant represents an isolated customer account. Users and products are
// scoped to exactly one tenant.
type Tenant struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Domain        string       `json:"domain" gorm:"type:varchar(255);uniqueIndex;not null"`
	Configuration TenantConfig `json:"configuration" gorm:"type:jsonb"`
	Status        string       `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
