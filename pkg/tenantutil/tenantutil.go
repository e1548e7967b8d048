package tenantutil

import (
	"fmt"

	"tenant-api/internal/model"

	"gorm.io/gorm"
)

// Isolation strategies for tenant data
const (
	StrategyDatabase = "database" // separate database per tenant
	StrategySchema   = "schema"   // schema prefix in a shared database
	StrategyShared   = "shared"   // shared database with a tenant_id column
)

// Limited resource types checked against tenant configuration
const (
	ResourceUsers    = "users"
	ResourceProducts = "products"
	ResourceStorage  = "storage"
)

// DSNForTenant derives a connection string for a tenant under the given
// isolation strategy. Only the shared strategy is exercised by the service;
// logical (filter-based) isolation is the guaranteed behavior.
func DSNForTenant(baseDSN string, tenantID uint, strategy string) string {
	switch strategy {
	case StrategyDatabase:
		return fmt.Sprintf("%s-%d", baseDSN, tenantID)
	case StrategySchema, StrategyShared:
		return baseDSN
	default:
		return baseDSN
	}
}

// CheckLimit reports whether a tenant may add one more of the given resource.
// An unknown resource type is not limited. A missing tenant record does not
// block the write; the tenant back-link is not transactionally enforced.
func CheckLimit(db *gorm.DB, tenantID uint, resource string, currentCount int64) (bool, error) {
	var tenant model.Tenant
	if err := db.First(&tenant, tenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return true, nil
		}
		return false, err
	}

	limits := tenant.Configuration.Limits
	switch resource {
	case ResourceUsers:
		return currentCount < int64(limits.MaxUsers), nil
	case ResourceProducts:
		return currentCount < int64(limits.MaxProducts), nil
	case ResourceStorage:
		return currentCount < limits.StorageLimit, nil
	default:
		return true, nil
	}
}
