package services

import (
	"errors"
	"fmt"
	"time"

	"neoforum/internal/models"

	"gorm.io/gorm"
)

type ReportService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReportService(gdb *gorm.DB, notifications *NotificationService) *ReportService {
	return &ReportService{db: gdb, notifications: notifications}
}

// File records an abuse report by reporter against a post. A reporter gets
// one report per post, ever: a second submission is rejected no matter what
// status the first one reached.
func (s *ReportService) File(reporter *models.User, postID uint, reason, details string) (*models.Report, error) {
	if reason == "" {
		return nil, invalid("reason", "required")
	}
	if len(reason) > 200 {
		return nil, invalid("reason", "too long")
	}

	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, transient(err)
	}

	// Dedup guard. The unique index backs this up against races.
	var count int64
	if err := s.db.Model(&models.Report{}).
		Where("reporter_id = ? AND post_id = ?", reporter.ID, postID).
		Count(&count).Error; err != nil {
		return nil, transient(err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: you have already reported this post", ErrDuplicate)
	}

	report := models.Report{
		ReporterID: reporter.ID,
		PostID:     postID,
		Reason:     reason,
		Details:    details,
		Status:     models.ReportStatusPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you have already reported this post", ErrDuplicate)
		}
		return nil, transient(err)
	}

	// Tell the moderators, off the request path
	go func() {
		note := fmt.Sprintf("%s reported \"%s\" (/p/%s): %s", reporter.Username, post.Title, post.Pid, reason)
		s.notifications.NotifyAdmins(&reporter.ID, models.NotificationTypeReport, note, &postID)
	}()

	return &report, nil
}

var validReportStatus = map[models.ReportStatus]bool{
	models.ReportStatusPending:   true,
	models.ReportStatusReviewed:  true,
	models.ReportStatusResolved:  true,
	models.ReportStatusDismissed: true,
}

// Triage moves a report through its lifecycle. resolved_at is set exactly
// when the status transitions into resolved and cleared on any transition
// away from it, so a reopened report carries no stale timestamp.
func (s *ReportService) Triage(reportID uint, status models.ReportStatus, moderatorNotes string) (*models.Report, error) {
	if !validReportStatus[status] {
		return nil, invalid("status", "unknown status")
	}

	var report models.Report
	if err := s.db.First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, transient(err)
	}

	updates := map[string]interface{}{
		"status":          status,
		"moderator_notes": moderatorNotes,
	}
	switch {
	case status == models.ReportStatusResolved && report.Status != models.ReportStatusResolved:
		now := time.Now()
		updates["resolved_at"] = &now
	case status != models.ReportStatusResolved:
		updates["resolved_at"] = nil
	}

	if err := s.db.Model(&report).Updates(updates).Error; err != nil {
		return nil, transient(err)
	}
	return &report, nil
}

// List returns reports for the moderation queue, newest first, optionally
// filtered by status.
func (s *ReportService) List(status models.ReportStatus) ([]models.Report, error) {
	q := s.db.Preload("Reporter").Preload("Post").Order("created_at DESC")
	if status != "" {
		if !validReportStatus[status] {
			return nil, invalid("status", "unknown status")
		}
		q = q.Where("status = ?", status)
	}

	var reports []models.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, transient(err)
	}
	return reports, nil
}
