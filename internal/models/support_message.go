package models

import (
	"time"
)

type SupportStatus string

const (
	SupportStatusOpen       SupportStatus = "open"
	SupportStatusInProgress SupportStatus = "in_progress"
	SupportStatusResolved   SupportStatus = "resolved"
	SupportStatusClosed     SupportStatus = "closed"
)

type SupportPriority string

const (
	SupportPriorityLow    SupportPriority = "low"
	SupportPriorityNormal SupportPriority = "normal"
	SupportPriorityHigh   SupportPriority = "high"
	SupportPriorityUrgent SupportPriority = "urgent"
)

// SupportMessage is a contact/support ticket. Submitters do not need an
// account, so contact fields live on the row; UserID links one when the
// submitter was logged in.
type SupportMessage struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     *uint           `gorm:"index" json:"user_id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Email      string          `gorm:"size:200;not null" json:"email"`
	Subject    string          `gorm:"size:200;not null" json:"subject"`
	Message    string          `gorm:"type:text;not null" json:"message"`
	Status     SupportStatus   `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Priority   SupportPriority `gorm:"type:varchar(20);default:'normal';index" json:"priority"`
	ResolvedAt *time.Time      `json:"resolved_at"` // set exactly while status == resolved
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
