package handlers

import (
	"fmt"
	"time"

	"neoforum/internal/db"
	"neoforum/internal/models"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reports       *services.ReportService
	support       *services.SupportService
	notifications *services.NotificationService
}

func NewAdminHandler(reports *services.ReportService, support *services.SupportService, notifications *services.NotificationService) *AdminHandler {
	return &AdminHandler{reports: reports, support: support, notifications: notifications}
}

// ListReports handles GET /api/admin/reports?status=pending.
func (h *AdminHandler) ListReports(c *gin.Context) {
	reports, err := h.reports.List(models.ReportStatus(c.Query("status")))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"reports": reports})
}

type triageRequest struct {
	Status         models.ReportStatus `json:"status"`
	ModeratorNotes string              `json:"moderator_notes"`
}

// TriageReport handles POST /api/admin/reports/:id — moves a report
// through pending/reviewed/resolved/dismissed.
func (h *AdminHandler) TriageReport(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "status", Reason: "required"})
		return
	}

	report, err := h.reports.Triage(utils.StringToUint(c.Param("id")), req.Status, req.ModeratorNotes)
	if err != nil {
		Fail(c, err)
		return
	}

	// Close the loop with the reporter
	if req.Status == models.ReportStatusResolved || req.Status == models.ReportStatusDismissed {
		go func() {
			reason := fmt.Sprintf("Your report was %s. Thanks for helping keep the forum safe.", req.Status)
			_ = h.notifications.Notify(report.ReporterID, nil, models.NotificationTypeSystem, reason, &report.PostID)
		}()
	}

	OK(c, gin.H{"report_id": report.ID, "status": req.Status})
}

// ListSupport handles GET /api/admin/support?status=open.
func (h *AdminHandler) ListSupport(c *gin.Context) {
	tickets, err := h.support.List(models.SupportStatus(c.Query("status")))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"tickets": tickets})
}

type supportUpdateRequest struct {
	Status   models.SupportStatus   `json:"status"`
	Priority models.SupportPriority `json:"priority"`
}

// UpdateSupport handles POST /api/admin/support/:id.
func (h *AdminHandler) UpdateSupport(c *gin.Context) {
	var req supportUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "status", Reason: "required"})
		return
	}

	ticket, err := h.support.UpdateStatus(utils.StringToUint(c.Param("id")), req.Status, req.Priority)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"ticket_id": ticket.ID, "status": req.Status})
}

// TakedownPost handles POST /api/admin/posts/:pid/takedown — marks the
// post deleted, docks the author and tells them why.
func (h *AdminHandler) TakedownPost(c *gin.Context) {
	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	if err := db.DB.Model(&post).Update("status", models.PostStatusDeleted).Error; err != nil {
		Fail(c, err)
		return
	}

	services.AddReputationAsync(post.UserID, services.RepPostTakenDown, services.ActionPostTakenDown)
	go func() {
		reason := fmt.Sprintf("Your post \"%s\" was removed by the moderators for violating the rules.", post.Title)
		_ = h.notifications.Notify(post.UserID, nil, models.NotificationTypeSystem, reason, &post.ID)
	}()

	utils.GetCache().Invalidate(
		fmt.Sprintf("post:%s", post.Pid),
		fmt.Sprintf("forum:%d", post.ForumID),
	)

	OK(c, nil)
}

type punishRequest struct {
	Status int `json:"status"` // 0: normal, 1: muted, 2: banned
	Days   int `json:"days"`
}

// PunishUser handles POST /api/admin/users/:id/punish.
func (h *AdminHandler) PunishUser(c *gin.Context) {
	var req punishRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status < 0 || req.Status > 2 {
		Fail(c, &services.ValidationError{Field: "status", Reason: "must be 0, 1 or 2"})
		return
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}
	if req.Status != 0 && req.Days > 0 {
		expires := time.Now().AddDate(0, 0, req.Days)
		updates["punish_expires"] = &expires
	} else {
		updates["punish_expires"] = nil
	}

	res := db.DB.Model(&models.User{}).Where("id = ?", utils.StringToUint(c.Param("id"))).Updates(updates)
	if res.Error != nil {
		Fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		Fail(c, services.ErrNotFound)
		return
	}

	OK(c, nil)
}
