package models

import (
	"time"
)

// Vote is one ledger row tying a user to a post with a polarity.
// The (user_id, post_id) unique index is the central invariant: at most
// one vote per user per post. Created on first vote, flipped or deleted
// on toggle, never duplicated.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_post;index" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}
