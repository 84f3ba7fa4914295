package services

import (
	"errors"
	"strings"
	"time"

	"neoforum/internal/models"

	"gorm.io/gorm"
)

type SupportService struct {
	db   *gorm.DB
	mail *MailService
}

func NewSupportService(gdb *gorm.DB, mail *MailService) *SupportService {
	return &SupportService{db: gdb, mail: mail}
}

var validSupportStatus = map[models.SupportStatus]bool{
	models.SupportStatusOpen:       true,
	models.SupportStatusInProgress: true,
	models.SupportStatusResolved:   true,
	models.SupportStatusClosed:     true,
}

var validSupportPriority = map[models.SupportPriority]bool{
	models.SupportPriorityLow:    true,
	models.SupportPriorityNormal: true,
	models.SupportPriorityHigh:   true,
	models.SupportPriorityUrgent: true,
}

// Create files a support ticket. userID is nil for anonymous submitters.
// Priority defaults to normal; an acknowledgment mail goes out best-effort.
func (s *SupportService) Create(userID *uint, name, email, subject, message string, priority models.SupportPriority) (*models.SupportMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	switch {
	case name == "":
		return nil, invalid("name", "required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, invalid("email", "valid address required")
	case subject == "":
		return nil, invalid("subject", "required")
	case message == "":
		return nil, invalid("message", "required")
	}

	if priority == "" {
		priority = models.SupportPriorityNormal
	}
	if !validSupportPriority[priority] {
		return nil, invalid("priority", "unknown priority")
	}

	ticket := models.SupportMessage{
		UserID:   userID,
		Name:     name,
		Email:    email,
		Subject:  subject,
		Message:  message,
		Status:   models.SupportStatusOpen,
		Priority: priority,
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		return nil, transient(err)
	}

	if s.mail != nil {
		s.mail.SendSupportAck(email, name, subject, ticket.ID)
	}
	return &ticket, nil
}

// UpdateStatus transitions a ticket. resolved_at is set exactly when the
// status moves into resolved and cleared on any move away from it. An
// empty priority leaves the current priority alone.
func (s *SupportService) UpdateStatus(ticketID uint, status models.SupportStatus, priority models.SupportPriority) (*models.SupportMessage, error) {
	if !validSupportStatus[status] {
		return nil, invalid("status", "unknown status")
	}
	if priority != "" && !validSupportPriority[priority] {
		return nil, invalid("priority", "unknown priority")
	}

	var ticket models.SupportMessage
	if err := s.db.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, transient(err)
	}

	updates := map[string]interface{}{"status": status}
	if priority != "" {
		updates["priority"] = priority
	}

	wasResolved := ticket.Status == models.SupportStatusResolved
	switch {
	case status == models.SupportStatusResolved && !wasResolved:
		now := time.Now()
		updates["resolved_at"] = &now
	case status != models.SupportStatusResolved:
		updates["resolved_at"] = nil
	}

	if err := s.db.Model(&ticket).Updates(updates).Error; err != nil {
		return nil, transient(err)
	}

	if s.mail != nil && status == models.SupportStatusResolved && !wasResolved {
		s.mail.SendSupportResolved(ticket.Email, ticket.Name, ticket.Subject, ticket.ID)
	}
	return &ticket, nil
}

// List returns tickets for the admin inbox, urgent and new first.
func (s *SupportService) List(status models.SupportStatus) ([]models.SupportMessage, error) {
	q := s.db.Order("created_at DESC")
	if status != "" {
		if !validSupportStatus[status] {
			return nil, invalid("status", "unknown status")
		}
		q = q.Where("status = ?", status)
	}

	var tickets []models.SupportMessage
	if err := q.Find(&tickets).Error; err != nil {
		return nil, transient(err)
	}
	return tickets, nil
}
