package handlers

import (
	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// File handles POST /api/posts/:pid/report.
func (h *ReportHandler) File(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		Fail(c, services.ErrUnauthenticated)
		return
	}

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "reason", Reason: "required"})
		return
	}

	if _, err := h.reports.File(user, post.ID, req.Reason, req.Details); err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"message": "report received, a moderator will take a look"})
}
