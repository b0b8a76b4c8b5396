package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice statuses
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)

// Invoice represents a bill issued to a tenant. Number is unique within a
// tenant, not globally.
type Invoice struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ClientID    uint           `json:"client_id" gorm:"index;not null"`
	Number      string         `json:"number" gorm:"type:varchar(50);not null"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	IssueDate   *time.Time     `json:"issue_date,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	AmountCents int64          `json:"amount_cents"`
	Currency    string         `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Notes       string         `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
