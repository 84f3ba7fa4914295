package handlers

import (
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"

	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	support *services.SupportService
}

func NewSupportHandler(support *services.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

type supportRequest struct {
	Name     string                 `json:"name"`
	Email    string                 `json:"email"`
	Subject  string                 `json:"subject"`
	Message  string                 `json:"message"`
	Priority models.SupportPriority `json:"priority"`
}

// Create handles POST /api/support. Works logged-out; a session identity
// gets linked when present.
func (h *SupportHandler) Create(c *gin.Context) {
	var req supportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "body", Reason: "malformed request"})
		return
	}

	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
		if req.Name == "" {
			req.Name = user.Username
		}
		if req.Email == "" {
			req.Email = user.Email
		}
	}

	ticket, err := h.support.Create(userID, req.Name, req.Email, req.Subject, req.Message, req.Priority)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"ticket_id": ticket.ID, "message": "thanks, we will be in touch"})
}
