package model

import "time"

// UserClient links an employee or admin to a tenant they may administer.
// Rows are reconciled as a set, so there is no soft delete here: removing an
// association deletes the row outright. At most one row per user carries
// IsPrimary.
type UserClient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_user_client;not null"`
	ClientID  uint      `json:"client_id" gorm:"uniqueIndex:idx_user_client;not null"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Client Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
