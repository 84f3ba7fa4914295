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

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	VoteType int `json:"vote_type"`
}

// Cast handles POST /api/posts/:pid/vote. Response carries the fresh
// aggregates so the client can update its state optimistically.
func (h *VoteHandler) Cast(c *gin.Context) {
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

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "vote_type", Reason: "must be 1 or -1"})
		return
	}

	res, err := h.votes.Cast(user.ID, post.ID, req.VoteType)
	if err != nil {
		Fail(c, err)
		return
	}

	// Reputation moves off the request path
	go func() {
		if post.UserID == user.ID {
			return
		}
		switch {
		case res.UserVote == nil:
			services.AddReputationAsync(post.UserID, -repForVote(req.VoteType), services.ActionVoteRetracted)
		case req.VoteType == 1:
			services.AddReputationAsync(post.UserID, services.RepPostUpvoted, services.ActionPostUpvoted)
		default:
			services.AddReputationAsync(post.UserID, services.RepPostDownvoted, services.ActionPostDownvoted)
			services.AddReputationAsync(user.ID, services.RepDownvoteOther, services.ActionDownvoteOther)
		}
	}()

	// Reconcile counters and hot score, then drop stale pages
	services.GetReconciler().Schedule(post.ID)
	utils.GetCache().Invalidate(
		fmt.Sprintf("post:%s", post.Pid),
		fmt.Sprintf("forum:%d", post.ForumID),
	)

	OK(c, gin.H{
		"upvotes":   res.Upvotes,
		"downvotes": res.Downvotes,
		"user_vote": res.UserVote,
	})
}

// repForVote is the reputation the post author gained from voteType.
func repForVote(voteType int) int {
	if voteType == 1 {
		return services.RepPostUpvoted
	}
	return services.RepPostDownvoted
}
