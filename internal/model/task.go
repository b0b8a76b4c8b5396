package model

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task represents a unit of work tracked for a single tenant
type Task struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ClientID    uint           `json:"client_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(200);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:'todo';index"`
	Priority    string         `json:"priority" gorm:"type:varchar(20);default:'normal'"`
	AssigneeID  *uint          `json:"assignee_id,omitempty" gorm:"index"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
