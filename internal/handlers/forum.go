package handlers

import (
	"neoforum/internal/db"
	"neoforum/internal/models"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct{}

func NewForumHandler() *ForumHandler {
	return &ForumHandler{}
}

func (h *ForumHandler) List(c *gin.Context) {
	var forums []models.Forum
	if err := db.DB.Order("id ASC").Find(&forums).Error; err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"forums": forums})
}
