package model

import "time"

// Setting is a per-tenant key/value pair. Key is unique within a tenant.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClientID  uint      `json:"client_id" gorm:"uniqueIndex:idx_client_setting;not null"`
	Key       string    `json:"key" gorm:"type:varchar(100);uniqueIndex:idx_client_setting;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
