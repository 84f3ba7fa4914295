package services

import (
	"context"
	"errors"
	"testing"

	"neoforum/internal/models"
)

func TestMarkReadOwnership(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewNotificationService(gdb, nil)

	owner := seedUser(t, gdb, "owner")
	intruder := seedUser(t, gdb, "intruder")

	if err := svc.Notify(owner.ID, nil, models.NotificationTypeSystem, "welcome aboard", nil); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	var n models.Notification
	gdb.Where("user_id = ?", owner.ID).First(&n)

	// Someone else's id on the request must look like a missing row
	if err := svc.MarkRead(intruder.ID, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign notification, got %v", err)
	}
	gdb.First(&n, n.ID)
	if n.IsRead {
		t.Error("foreign MarkRead must not touch the row")
	}

	if err := svc.MarkRead(owner.ID, n.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	gdb.First(&n, n.ID)
	if !n.IsRead {
		t.Error("expected notification marked read")
	}

	// Re-marking an already read notification is a no-op, not an error
	if err := svc.MarkRead(owner.ID, n.ID); err != nil {
		t.Errorf("MarkRead on read notification should succeed, got %v", err)
	}
}

func TestDeleteOwnership(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewNotificationService(gdb, nil)

	owner := seedUser(t, gdb, "owner")
	intruder := seedUser(t, gdb, "intruder")

	if err := svc.Notify(owner.ID, nil, models.NotificationTypeSystem, "hello", nil); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	var n models.Notification
	gdb.Where("user_id = ?", owner.ID).First(&n)

	if err := svc.Delete(intruder.ID, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.Delete(owner.ID, n.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(owner.ID, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewNotificationService(gdb, nil)
	ctx := context.Background()

	user := seedUser(t, gdb, "reader")
	for i := 0; i < 3; i++ {
		if err := svc.Notify(user.ID, nil, models.NotificationTypeSystem, "ping", nil); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	count, err := svc.UnreadCount(ctx, user.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 unread, got %d", count)
	}

	if err := svc.MarkAllRead(user.ID); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	count, err = svc.UnreadCount(ctx, user.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 unread after MarkAllRead, got %d", count)
	}
}

func TestNotifyCommentTargets(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewNotificationService(gdb, nil)

	author := seedUser(t, gdb, "author")
	commenter := seedUser(t, gdb, "commenter")
	replier := seedUser(t, gdb, "replier")
	post := seedPost(t, gdb, author, "discuss")

	top := models.Comment{Cid: "c0000001", PostID: post.ID, UserID: commenter.ID, Content: "first"}
	if err := gdb.Create(&top).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Top-level comment notifies the post author
	svc.NotifyComment(&top, post, commenter)
	var n models.Notification
	if err := gdb.Where("user_id = ?", author.ID).First(&n).Error; err != nil {
		t.Fatalf("expected notification for post author: %v", err)
	}
	if n.Type != models.NotificationTypeCommentPost {
		t.Errorf("expected comment_post type, got %s", n.Type)
	}

	// A reply notifies the parent comment's author, not the post author.
	// Query into a fresh struct: a populated primary key would leak into
	// the conditions.
	reply := models.Comment{Cid: "c0000002", PostID: post.ID, UserID: replier.ID, ParentID: &top.ID, Content: "second"}
	if err := gdb.Create(&reply).Error; err != nil {
		t.Fatalf("create reply: %v", err)
	}
	svc.NotifyComment(&reply, post, replier)
	var replyNotif models.Notification
	if err := gdb.Where("user_id = ? AND type = ?", commenter.ID, models.NotificationTypeReplyComment).First(&replyNotif).Error; err != nil {
		t.Fatalf("expected reply notification for parent author: %v", err)
	}
	if replyNotif.ActorID == nil || *replyNotif.ActorID != replier.ID {
		t.Errorf("expected reply notification from replier, got actor %v", replyNotif.ActorID)
	}

	// Commenting on your own post stays silent
	own := models.Comment{Cid: "c0000003", PostID: post.ID, UserID: author.ID, Content: "mine"}
	if err := gdb.Create(&own).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	svc.NotifyComment(&own, post, author)
	var count int64
	gdb.Model(&models.Notification{}).Where("user_id = ? AND actor_id = ?", author.ID, author.ID).Count(&count)
	if count != 0 {
		t.Errorf("self-comment must not notify, found %d rows", count)
	}
}

func TestFanOutMentions(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewNotificationService(gdb, nil)

	actor := seedUser(t, gdb, "actor")
	mentioned := seedUser(t, gdb, "friend")
	post := seedPost(t, gdb, actor, "shoutout")

	svc.FanOutMentions("hey @friend and @friend again, also @ghost and @actor", post, actor)

	// Known user gets exactly one notification despite the repeat
	var count int64
	gdb.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", mentioned.ID, models.NotificationTypeMention).
		Count(&count)
	if count != 1 {
		t.Errorf("expected one mention notification, got %d", count)
	}

	// Unknown names and self-mentions produce nothing
	gdb.Model(&models.Notification{}).Where("user_id = ?", actor.ID).Count(&count)
	if count != 0 {
		t.Errorf("actor must not be notified of their own mention, got %d", count)
	}
}
