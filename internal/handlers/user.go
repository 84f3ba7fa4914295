package handlers

import (
	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile handles GET /api/users/:id — public view of an account and its
// recent published posts.
func (h *UserHandler) Profile(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, utils.StringToUint(c.Param("id"))).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	var posts []models.Post
	db.DB.Where("user_id = ? AND status = ?", user.ID, models.PostStatusPublished).
		Order("created_at DESC").
		Limit(20).
		Find(&posts)

	tier, icon := utils.ReputationTier(user.Reputation)
	OK(c, gin.H{
		"user":      user,
		"posts":     posts,
		"tier":      tier,
		"tier_icon": icon,
		"days":      utils.DaysSinceJoined(user.CreatedAt),
	})
}

type settingsRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// UpdateSettings handles POST /api/me/settings.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "body", Reason: "malformed request"})
		return
	}

	updates := map[string]interface{}{}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if req.Bio != "" {
		if len(req.Bio) > 200 {
			Fail(c, &services.ValidationError{Field: "bio", Reason: "200 characters max"})
			return
		}
		updates["bio"] = req.Bio
	}
	if len(updates) == 0 {
		OK(c, nil)
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"user": user})
}

// ReputationLogs handles GET /api/me/reputation.
func (h *UserHandler) ReputationLogs(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var logs []models.ReputationLog
	if err := db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&logs).Error; err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"logs": logs, "balance": user.Reputation})
}
