package model

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a tenant: a customer organization whose data is isolated
// from every other tenant. Ordinary decommissioning flips Active to false;
// hard deletion is an admin-only operation.
type Client struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CompanyName   string         `json:"company_name" gorm:"type:varchar(150);not null"`
	ContactPerson string         `json:"contact_person" gorm:"type:varchar(100)"`
	ContactNumber string         `json:"contact_number" gorm:"type:varchar(30)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	Address       string         `json:"address" gorm:"type:text"`
	Website       string         `json:"website" gorm:"type:varchar(255)"`
	Industry      string         `json:"industry" gorm:"type:varchar(100)"`
	Domain        string         `json:"domain" gorm:"type:varchar(100);index"`
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
