package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the portal-facing record for a user: display fields plus the
// role that drives every authorization decision. ClientID is set only for
// client-role profiles and pins that user to a single tenant; for employees
// and admins it must stay null and tenant scope comes from UserClient rows.
type Profile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	Role      Role           `json:"role" gorm:"type:varchar(20);not null;index"`
	ClientID  *uint          `json:"client_id,omitempty" gorm:"index"`
	AvatarURL string         `json:"avatar_url" gorm:"type:varchar(255)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
