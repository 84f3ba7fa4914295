package services

import (
	"neoforum/internal/db"
	"neoforum/internal/models"

	"gorm.io/gorm"
)

// Reputation actions
const (
	ActionPostCreate    = "published a post"
	ActionPostUpvoted   = "post upvoted"
	ActionPostDownvoted = "post downvoted"
	ActionVoteRetracted = "vote retracted"
	ActionCommentCreate = "posted a comment"
	ActionDownvoteOther = "downvoted someone"
	ActionPostTakenDown = "post removed by moderators"
)

// Reputation values
const (
	RepPostCreate    = 1
	RepPostUpvoted   = 1
	RepPostDownvoted = -3
	RepCommentCreate = 1
	RepDownvoteOther = -1
	RepPostTakenDown = -10
)

// AddReputation records a reputation change and updates the user's balance
// in one transaction.
func AddReputation(userID uint, amount int, action string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		entry := models.ReputationLog{
			UserID: userID,
			Amount: amount,
			Action: action,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("reputation", gorm.Expr("reputation + ?", amount)).
			Error
	})
}

// AddReputationAsync applies the change off the request path.
func AddReputationAsync(userID uint, amount int, action string) {
	go func() {
		_ = AddReputation(userID, amount, action)
	}()
}
