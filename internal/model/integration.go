package model

import (
	"time"

	"gorm.io/gorm"
)

// Integration represents a third-party service connected for a tenant.
// APIKey is stored but never returned in list responses.
type Integration struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClientID  uint           `json:"client_id" gorm:"index;not null"`
	Provider  string         `json:"provider" gorm:"type:varchar(100);not null"`
	APIKey    string         `json:"api_key,omitempty" gorm:"type:varchar(255)"`
	Config    string         `json:"config" gorm:"type:jsonb"`
	Enabled   bool           `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
