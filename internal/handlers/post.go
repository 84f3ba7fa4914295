package handlers

import (
	"fmt"
	"net/http"
	"time"

	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	notifications *services.NotificationService
	votes         *services.VoteService
}

func NewPostHandler(notifications *services.NotificationService, votes *services.VoteService) *PostHandler {
	return &PostHandler{notifications: notifications, votes: votes}
}

const (
	listingCacheTTL = 2 * time.Minute
	detailCacheTTL  = 5 * time.Minute
	pageSize        = 25
)

// ListByForum handles GET /api/forums/:slug/posts?sort=hot|new&page=N.
// The first hot page is the heavy one; it is served from the page cache
// and recomputed after the invalidation signal.
func (h *PostHandler) ListByForum(c *gin.Context) {
	var forum models.Forum
	if err := db.DB.Where("slug = ?", c.Param("slug")).First(&forum).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	sort := c.DefaultQuery("sort", "hot")
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("forum:%d", forum.ID)
	cacheable := sort == "hot" && page == 1
	if cacheable {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	order := "hot_score DESC, created_at DESC"
	if sort == "new" {
		order = "created_at DESC"
	}

	var posts []models.Post
	if err := db.DB.Preload("User").
		Where("forum_id = ? AND status = ?", forum.ID, models.PostStatusPublished).
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		Fail(c, err)
		return
	}

	payload := gin.H{"success": true, "forum": forum, "posts": posts, "page": page}
	if cacheable {
		utils.GetCache().Set(cacheKey, payload, listingCacheTTL)
	}
	c.JSON(http.StatusOK, payload)
}

// Detail handles GET /api/posts/:pid. The shared payload is cached; the
// caller's own vote is always read live.
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")

	cacheKey := fmt.Sprintf("post:%s", pid)
	cached := utils.GetCache().Get(cacheKey)

	var post models.Post
	if cached == nil {
		if err := db.DB.Preload("User").Preload("Forum").
			Where("pid = ? AND status IN ?", pid, []models.PostStatus{models.PostStatusPublished, models.PostStatusArchived}).
			First(&post).Error; err != nil {
			Fail(c, services.ErrNotFound)
			return
		}

		var comments []models.Comment
		db.DB.Preload("User").
			Where("post_id = ?", post.ID).
			Order("created_at ASC").
			Find(&comments)

		payload := gin.H{"success": true, "post": post, "comments": comments}
		utils.GetCache().Set(cacheKey, payload, detailCacheTTL)
		cached = payload
	} else {
		if p, ok := cached.(gin.H)["post"].(models.Post); ok {
			post = p
		}
	}

	// Views move even on cache hits
	if post.ID != 0 {
		db.DB.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("views", gorm.Expr("views + 1"))
	}

	out := gin.H{}
	for k, v := range cached.(gin.H) {
		out[k] = v
	}
	if user := middleware.CurrentUser(c); user != nil && post.ID != 0 {
		if v := h.votes.UserVote(user.ID, post.ID); v != 0 {
			out["user_vote"] = v
		}
	}

	c.JSON(http.StatusOK, out)
}

type createPostRequest struct {
	ForumSlug string `json:"forum_slug"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Draft     bool   `json:"draft"`
}

// Create handles POST /api/posts. Markdown is rendered and sanitized once
// at write time.
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := checkCanPublish(user); err != nil {
		Fail(c, err)
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "body", Reason: "malformed request"})
		return
	}
	if req.Title == "" {
		Fail(c, &services.ValidationError{Field: "title", Reason: "required"})
		return
	}

	forumID := uint(1)
	if req.ForumSlug != "" {
		var forum models.Forum
		if err := db.DB.Where("slug = ?", req.ForumSlug).First(&forum).Error; err != nil {
			Fail(c, services.ErrNotFound)
			return
		}
		forumID = forum.ID
	}

	status := models.PostStatusPublished
	if req.Draft {
		status = models.PostStatusDraft
	}

	post := models.Post{
		Pid:         utils.RandomID(8),
		UserID:      user.ID,
		ForumID:     forumID,
		Title:       req.Title,
		URL:         req.URL,
		Content:     req.Content,
		ContentHTML: utils.RenderMarkdown(req.Content),
		Status:      status,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		Fail(c, err)
		return
	}

	if status == models.PostStatusPublished {
		services.AddReputationAsync(user.ID, services.RepPostCreate, services.ActionPostCreate)
		go h.notifications.FanOutMentions(req.Content, &post, user)
		utils.GetCache().Invalidate(fmt.Sprintf("forum:%d", forumID))
	}

	OK(c, gin.H{"post": post})
}

type statusRequest struct {
	Status models.PostStatus `json:"status"`
}

// UpdateStatus handles POST /api/posts/:pid/status — the post lifecycle
// (draft, published, archived, deleted). Authors manage their own posts.
func (h *PostHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}
	if post.UserID != user.ID && user.Role != "admin" {
		// Do not reveal other people's drafts
		Fail(c, services.ErrNotFound)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "status", Reason: "required"})
		return
	}
	switch req.Status {
	case models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived, models.PostStatusDeleted:
	default:
		Fail(c, &services.ValidationError{Field: "status", Reason: "unknown status"})
		return
	}

	if err := db.DB.Model(&post).Update("status", req.Status).Error; err != nil {
		Fail(c, err)
		return
	}

	utils.GetCache().Invalidate(
		fmt.Sprintf("post:%s", post.Pid),
		fmt.Sprintf("forum:%d", post.ForumID),
	)

	OK(c, gin.H{"status": req.Status})
}

type createCommentRequest struct {
	Content   string `json:"content"`
	ParentCid string `json:"parent_cid"`
}

// CreateComment handles POST /api/posts/:pid/comments. New replies fan
// out notifications to the post author, the parent comment's author and
// any @mentioned users.
func (h *PostHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := checkCanPublish(user); err != nil {
		Fail(c, err)
		return
	}

	var post models.Post
	if err := db.DB.Where("pid = ? AND status = ?", c.Param("pid"), models.PostStatusPublished).First(&post).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		Fail(c, &services.ValidationError{Field: "content", Reason: "required"})
		return
	}

	comment := models.Comment{
		Cid:         utils.RandomID(8),
		PostID:      post.ID,
		UserID:      user.ID,
		Content:     req.Content,
		ContentHTML: utils.RenderMarkdown(req.Content),
	}
	if req.ParentCid != "" {
		var parent models.Comment
		if err := db.DB.Where("cid = ? AND post_id = ?", req.ParentCid, post.ID).First(&parent).Error; err != nil {
			Fail(c, services.ErrNotFound)
			return
		}
		comment.ParentID = &parent.ID
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		Fail(c, err)
		return
	}

	// Keep the projection moving; the reconciler trues it up
	db.DB.Model(&post).UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))

	services.AddReputationAsync(user.ID, services.RepCommentCreate, services.ActionCommentCreate)
	go func() {
		h.notifications.NotifyComment(&comment, &post, user)
		h.notifications.FanOutMentions(req.Content, &post, user)
	}()

	services.GetReconciler().Schedule(post.ID)
	utils.GetCache().Invalidate(
		fmt.Sprintf("post:%s", post.Pid),
		fmt.Sprintf("forum:%d", post.ForumID),
	)

	OK(c, gin.H{"comment": comment})
}

// checkCanPublish enforces mute/ban status before any content mutation.
func checkCanPublish(user *models.User) error {
	if user == nil {
		return services.ErrUnauthenticated
	}
	switch user.Status {
	case 2:
		return services.ErrForbidden
	case 1:
		if user.PunishExpires != nil && time.Now().After(*user.PunishExpires) {
			// Punishment lapsed, restore on the way through
			db.DB.Model(user).Update("status", 0)
			return nil
		}
		return services.ErrForbidden
	}
	return nil
}
