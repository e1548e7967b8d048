package model

import (
	"time"
)

// User roles and statuses
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents the user model stored in the database. The same email may
// exist under different tenants but not twice under one, so email and
// tenant_id share a composite unique index.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"uniqueIndex:idx_users_email_tenant;not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_users_email_tenant;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Role      string    `json:"role" gorm:"type:varchar(20);default:'user'"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
