package models

import (
	"time"
)

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"not null" json:"username"` // Username can be modified
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"not null" json:"-"` // Hash
	Avatar        string     `gorm:"default:🪐" json:"avatar"` // emoji avatar
	Bio           string     `gorm:"size:200" json:"bio"`
	Reputation    int        `gorm:"default:0" json:"reputation"`
	Role          string     `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Status        int        `gorm:"default:0" json:"status"`                     // 0: normal, 1: muted, 2: banned
	PunishExpires *time.Time `json:"punish_expires"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	// No DeletedAt for hard delete
}
