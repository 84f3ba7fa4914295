package handlers

import (
	"neoforum/internal/middleware"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit := utils.StringToInt(c.DefaultQuery("limit", "50"))
	notifications, err := h.notifications.List(user.ID, limit)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"notifications": notifications})
}

// UnreadCount serves the poll endpoint. Clients refresh on a fixed
// interval; there is no push, so staleness equals the poll interval.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	count, err := h.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"unread": count})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id := utils.StringToUint(c.Param("id"))
	if err := h.notifications.MarkRead(user.ID, id); err != nil {
		Fail(c, err)
		return
	}

	OK(c, nil)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.notifications.MarkAllRead(user.ID); err != nil {
		Fail(c, err)
		return
	}

	OK(c, nil)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id := utils.StringToUint(c.Param("id"))
	if err := h.notifications.Delete(user.ID, id); err != nil {
		Fail(c, err)
		return
	}

	OK(c, nil)
}
