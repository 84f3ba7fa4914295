package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
	PostStatusDeleted   PostStatus = "deleted"
)

type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Pid     string `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ForumID uint   `gorm:"not null;index;default:1" json:"forum_id"`
	Forum   Forum  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"forum"`
	Title   string `gorm:"not null" json:"title"`
	URL     string `json:"url"` // Optional
	Content string `gorm:"type:text" json:"content"`
	// Rendered + sanitized HTML, produced once at write time
	ContentHTML string `gorm:"type:text" json:"content_html"`

	// Denormalized projection of the vote/comment ledgers. Incrementally
	// maintained by VoteService and reconciled by the Reconciler.
	Upvotes      int `gorm:"default:0" json:"upvotes"`
	Downvotes    int `gorm:"default:0" json:"downvotes"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	HotScore  float64    `gorm:"default:0;index" json:"hot_score"` // listing order
	Views     int        `gorm:"default:0" json:"views"`
	Status    PostStatus `gorm:"type:varchar(20);default:'published';index" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Score is upvotes - downvotes. May be negative, no floor.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}
