package model

import (
	"time"

	"gorm.io/gorm"
)

// Appointment represents a scheduled meeting with a tenant
type Appointment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClientID  uint           `json:"client_id" gorm:"index;not null"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	StartsAt  time.Time      `json:"starts_at" gorm:"index;not null"`
	EndsAt    *time.Time     `json:"ends_at,omitempty"`
	Location  string         `json:"location" gorm:"type:varchar(255)"`
	Attendee  string         `json:"attendee" gorm:"type:varchar(100)"`
	Notes     string         `json:"notes" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
