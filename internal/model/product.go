package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a tenant-scoped product record
type Product struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Category    string         `json:"category" gorm:"type:varchar(100)"`
	Stock       int            `json:"stock" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
