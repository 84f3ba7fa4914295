package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"neoforum/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	unreadKeyPrefix = "notif:unread" // cached unread count per user
	unreadTTL       = 5 * time.Minute
)

// mentionPattern matches @username tokens in post and comment bodies.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]{2,30})`)

// NotificationService owns notification rows and the per-user unread
// counter. The counter is served cache-aside from redis when a client is
// configured; every notification mutation drops the cached value so the
// next poll recomputes it. Clients poll on a fixed interval, so staleness
// is bounded by the poll interval either way.
type NotificationService struct {
	db  *gorm.DB
	rdb *redis.Client // nil when redis is not configured
}

func NewNotificationService(gdb *gorm.DB, rdb *redis.Client) *NotificationService {
	return &NotificationService{db: gdb, rdb: rdb}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s:%d", unreadKeyPrefix, userID)
}

// UnreadCount returns the number of unread notifications owned by userID.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, unreadKey(userID)).Int64(); err == nil {
			return val, nil
		} else if !errors.Is(err, redis.Nil) {
			// Cache trouble is not a caller problem, fall through to the DB
		}
	}

	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, transient(err)
	}

	if s.rdb != nil {
		_ = s.rdb.Set(ctx, unreadKey(userID), count, unreadTTL).Err()
	}
	return count, nil
}

func (s *NotificationService) dropCachedCount(userID uint) {
	if s.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.rdb.Del(ctx, unreadKey(userID)).Err()
}

// MarkRead flips one notification to read. Ownership is enforced by the
// update predicate itself: a notification owned by someone else matches
// zero rows and reports ErrNotFound, leaving the row untouched.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.dropCachedCount(userID)
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return transient(err)
	}
	s.dropCachedCount(userID)
	return nil
}

// Delete removes one notification. Same ownership predicate as MarkRead.
func (s *NotificationService) Delete(userID, notificationID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.dropCachedCount(userID)
	return nil
}

func (s *NotificationService) List(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	if err := s.db.Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, transient(err)
	}
	return notifications, nil
}

// Notify creates one notification row and drops the receiver's cached
// unread count.
func (s *NotificationService) Notify(userID uint, actorID *uint, typ models.NotificationType, reason string, postID *uint) error {
	n := models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    typ,
		Reason:  reason,
		PostID:  postID,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return transient(err)
	}
	s.dropCachedCount(userID)
	return nil
}

// NotifyComment fans out the notifications a new comment triggers: the
// post author for top-level comments, the parent comment's author for
// replies. The actor never notifies themselves.
func (s *NotificationService) NotifyComment(comment *models.Comment, post *models.Post, actor *models.User) {
	reason := fmt.Sprintf("%s commented on \"%s\"", actor.Username, post.Title)
	typ := models.NotificationTypeCommentPost
	receiver := post.UserID

	if comment.ParentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *comment.ParentID).Error; err == nil {
			receiver = parent.UserID
			reason = fmt.Sprintf("%s replied to your comment on \"%s\"", actor.Username, post.Title)
			typ = models.NotificationTypeReplyComment
		}
	}

	if receiver != actor.ID {
		_ = s.Notify(receiver, &actor.ID, typ, reason, &post.ID)
	}
}

// FanOutMentions notifies every @mentioned user found in content. Unknown
// usernames are ignored; the actor cannot mention themselves.
func (s *NotificationService) FanOutMentions(content string, post *models.Post, actor *models.User) {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	var users []models.User
	if err := s.db.Where("username IN ?", names).Find(&users).Error; err != nil {
		return
	}

	reason := fmt.Sprintf("%s mentioned you in \"%s\"", actor.Username, post.Title)
	for _, u := range users {
		if u.ID == actor.ID {
			continue
		}
		_ = s.Notify(u.ID, &actor.ID, models.NotificationTypeMention, reason, &post.ID)
	}
}

// NotifyAdmins sends the same notification to every admin account.
func (s *NotificationService) NotifyAdmins(actorID *uint, typ models.NotificationType, reason string, postID *uint) {
	var admins []models.User
	if err := s.db.Where("role = ?", "admin").Find(&admins).Error; err != nil {
		return
	}
	for _, admin := range admins {
		_ = s.Notify(admin.ID, actorID, typ, reason, postID)
	}
}
