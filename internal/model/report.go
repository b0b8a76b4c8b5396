package model

import (
	"time"

	"gorm.io/gorm"
)

// Report represents a periodic deliverable shared with a tenant
type Report struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ClientID    uint           `json:"client_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	PeriodStart *time.Time     `json:"period_start,omitempty"`
	PeriodEnd   *time.Time     `json:"period_end,omitempty"`
	Summary     string         `json:"summary" gorm:"type:text"`
	FileURL     string         `json:"file_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
