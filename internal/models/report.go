package models

import (
	"time"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Report is an abuse report against a post. One row per (reporter, post),
// in any status: a user may not re-report content even after the first
// report was resolved or dismissed.
type Report struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ReporterID     uint         `gorm:"not null;uniqueIndex:idx_report_user_post" json:"reporter_id"`
	Reporter       User         `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
	PostID         uint         `gorm:"not null;uniqueIndex:idx_report_user_post;index" json:"post_id"`
	Post           Post         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	Reason         string       `gorm:"size:200;not null" json:"reason"`
	Details        string       `gorm:"type:text" json:"details"`
	Status         ReportStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ModeratorNotes string       `gorm:"type:text" json:"moderator_notes"`
	ResolvedAt     *time.Time   `json:"resolved_at"` // set exactly while status == resolved
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
