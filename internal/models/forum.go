package models

import (
	"time"
)

type Forum struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"not null;uniqueIndex;size:50" json:"slug"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
