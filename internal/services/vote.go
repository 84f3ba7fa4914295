package services

import (
	"errors"

	"neoforum/internal/models"

	"gorm.io/gorm"
)

// VoteResult carries the fresh aggregates and the caller's vote state
// after a cast. UserVote is nil when the user has no standing vote.
type VoteResult struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	UserVote  *int `json:"user_vote"`
}

type VoteService struct {
	db *gorm.DB
}

func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb}
}

// Cast records, retracts or flips a vote by userID on postID.
//   - no standing vote: insert, bump the matching counter
//   - standing vote, same polarity: delete the row (retraction)
//   - standing vote, opposite polarity: flip it, net ±2 on the score
//
// The whole read-modify-write runs in a single transaction so concurrent
// voters cannot drift the post counters from the ledger.
func (s *VoteService) Cast(userID, postID uint, voteType int) (*VoteResult, error) {
	if voteType != 1 && voteType != -1 {
		return nil, invalid("vote_type", "must be 1 or -1")
	}

	res := &VoteResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ? AND status = ?", postID, models.PostStatusPublished).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return transient(err)
		}

		var existing models.Vote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Savepoint before the insert: postgres aborts the whole
			// transaction on a constraint violation, so the fallback
			// re-read below needs a clean state to run in.
			if err := tx.SavePoint("cast_vote").Error; err != nil {
				return transient(err)
			}
			vote := models.Vote{UserID: userID, PostID: postID, Value: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					if err := tx.RollbackTo("cast_vote").Error; err != nil {
						return transient(err)
					}
					// Lost a race against a concurrent first vote on the same
					// pair. Idempotent no-op: adopt the row that won, counters
					// were already moved by the winner.
					if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err != nil {
						return transient(err)
					}
					res.UserVote = &existing.Value
					break
				}
				return transient(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn(counterColumn(voteType), gorm.Expr(counterColumn(voteType)+" + 1")).Error; err != nil {
				return transient(err)
			}
			v := voteType
			res.UserVote = &v

		case err != nil:
			return transient(err)

		case existing.Value == voteType:
			// Same polarity again: retraction ("un-voting")
			if err := tx.Delete(&existing).Error; err != nil {
				return transient(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn(counterColumn(voteType), gorm.Expr(counterColumn(voteType)+" - 1")).Error; err != nil {
				return transient(err)
			}
			res.UserVote = nil

		default:
			// Opposite polarity: flip in place
			if err := tx.Model(&existing).UpdateColumn("value", voteType).Error; err != nil {
				return transient(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumns(map[string]interface{}{
					counterColumn(-voteType): gorm.Expr(counterColumn(-voteType) + " - 1"),
					counterColumn(voteType):  gorm.Expr(counterColumn(voteType) + " + 1"),
				}).Error; err != nil {
				return transient(err)
			}
			v := voteType
			res.UserVote = &v
		}

		// Re-read the aggregates inside the transaction so the caller sees
		// exactly the state this cast produced.
		if err := tx.Select("upvotes", "downvotes").First(&post, postID).Error; err != nil {
			return transient(err)
		}
		res.Upvotes = post.Upvotes
		res.Downvotes = post.Downvotes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UserVote returns the caller's standing vote on a post, 0 when none.
func (s *VoteService) UserVote(userID, postID uint) int {
	var vote models.Vote
	if err := s.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error; err != nil {
		return 0
	}
	return vote.Value
}

func counterColumn(voteType int) string {
	if voteType == 1 {
		return "upvotes"
	}
	return "downvotes"
}
