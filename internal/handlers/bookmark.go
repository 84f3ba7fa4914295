package handlers

import (
	"fmt"

	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct{}

func NewBookmarkHandler() *BookmarkHandler {
	return &BookmarkHandler{}
}

// Toggle handles POST /api/posts/:pid/bookmark — save or unsave.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	bookmarked := false
	var existing models.Bookmark
	if err := db.DB.Where("user_id = ? AND post_id = ?", user.ID, post.ID).First(&existing).Error; err == nil {
		db.DB.Delete(&existing)
	} else {
		bookmark := models.Bookmark{
			UserID: user.ID,
			PostID: post.ID,
		}
		db.DB.Create(&bookmark)
		bookmarked = true
	}

	utils.GetCache().Invalidate(fmt.Sprintf("post:%s", post.Pid))

	var count int64
	db.DB.Model(&models.Bookmark{}).Where("post_id = ?", post.ID).Count(&count)

	OK(c, gin.H{"bookmarked": bookmarked, "count": count})
}

// Mine handles GET /api/bookmarks — the caller's saved posts.
func (h *BookmarkHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var bookmarks []models.Bookmark
	if err := db.DB.Preload("Post").Preload("Post.User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		Fail(c, err)
		return
	}

	OK(c, gin.H{"bookmarks": bookmarks})
}
