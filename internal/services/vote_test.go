package services

import (
	"errors"
	"testing"

	"neoforum/internal/models"
)

func TestCastVoteScenario(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	alice := seedUser(t, gdb, "alice")
	post := seedPost(t, gdb, author, "hello world")
	seedVotes(t, gdb, post, 3, 1)

	// First upvote lands
	res, err := svc.Cast(alice.ID, post.ID, 1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if res.Upvotes != 4 || res.Downvotes != 1 {
		t.Errorf("expected 4/1, got %d/%d", res.Upvotes, res.Downvotes)
	}
	if res.UserVote == nil || *res.UserVote != 1 {
		t.Errorf("expected user_vote +1, got %v", res.UserVote)
	}

	// Same polarity again retracts
	res, err = svc.Cast(alice.ID, post.ID, 1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if res.Upvotes != 3 || res.Downvotes != 1 {
		t.Errorf("expected 3/1 after retraction, got %d/%d", res.Upvotes, res.Downvotes)
	}
	if res.UserVote != nil {
		t.Errorf("expected no standing vote, got %v", *res.UserVote)
	}

	// Fresh downvote
	res, err = svc.Cast(alice.ID, post.ID, -1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if res.Upvotes != 3 || res.Downvotes != 2 {
		t.Errorf("expected 3/2, got %d/%d", res.Upvotes, res.Downvotes)
	}
	if res.UserVote == nil || *res.UserVote != -1 {
		t.Errorf("expected user_vote -1, got %v", res.UserVote)
	}

	assertLedgerConsistent(t, gdb, post.ID)
}

func TestCastVoteToggleLaw(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	bob := seedUser(t, gdb, "bob")
	post := seedPost(t, gdb, author, "toggle me")

	if _, err := svc.Cast(bob.ID, post.ID, 1); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if _, err := svc.Cast(bob.ID, post.ID, 1); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	// Vote twice == never voted: no row, counters back where they started
	var rows int64
	gdb.Model(&models.Vote{}).Where("user_id = ? AND post_id = ?", bob.ID, post.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("expected no ledger row after toggle, found %d", rows)
	}

	var fresh models.Post
	gdb.First(&fresh, post.ID)
	if fresh.Upvotes != 0 || fresh.Downvotes != 0 {
		t.Errorf("expected 0/0 after toggle, got %d/%d", fresh.Upvotes, fresh.Downvotes)
	}
}

func TestCastVoteFlip(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	carol := seedUser(t, gdb, "carol")
	post := seedPost(t, gdb, author, "flip me")
	seedVotes(t, gdb, post, 2, 2)

	if _, err := svc.Cast(carol.ID, post.ID, 1); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	// Opposite polarity flips in place, net -2 on the score
	res, err := svc.Cast(carol.ID, post.ID, -1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if res.Upvotes != 2 || res.Downvotes != 3 {
		t.Errorf("expected 2/3 after flip, got %d/%d", res.Upvotes, res.Downvotes)
	}
	if res.UserVote == nil || *res.UserVote != -1 {
		t.Errorf("expected user_vote -1 after flip, got %v", res.UserVote)
	}

	// Still exactly one row for the pair
	var rows int64
	gdb.Model(&models.Vote{}).Where("user_id = ? AND post_id = ?", carol.ID, post.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("expected exactly one ledger row, found %d", rows)
	}

	assertLedgerConsistent(t, gdb, post.ID)
}

func TestCastVoteValidation(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	dave := seedUser(t, gdb, "dave")
	post := seedPost(t, gdb, author, "rules")

	var vErr *ValidationError
	if _, err := svc.Cast(dave.ID, post.ID, 2); !errors.As(err, &vErr) {
		t.Errorf("expected validation error for vote_type 2, got %v", err)
	}
	if _, err := svc.Cast(dave.ID, post.ID, 0); !errors.As(err, &vErr) {
		t.Errorf("expected validation error for vote_type 0, got %v", err)
	}
}

func TestCastVoteMissingOrUnpublishedPost(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	eve := seedUser(t, gdb, "eve")

	if _, err := svc.Cast(eve.ID, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing post, got %v", err)
	}

	draft := seedPost(t, gdb, author, "draft")
	gdb.Model(draft).Update("status", models.PostStatusDraft)
	if _, err := svc.Cast(eve.ID, draft.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for draft post, got %v", err)
	}
}

func TestCastVoteNegativeScoreAllowed(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewVoteService(gdb)

	author := seedUser(t, gdb, "author")
	frank := seedUser(t, gdb, "frank")
	post := seedPost(t, gdb, author, "unpopular opinion")

	res, err := svc.Cast(frank.ID, post.ID, -1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if score := res.Upvotes - res.Downvotes; score != -1 {
		t.Errorf("expected score -1, got %d", score)
	}
}

func TestRecountFixesDrift(t *testing.T) {
	gdb := newTestDB(t)

	author := seedUser(t, gdb, "author")
	post := seedPost(t, gdb, author, "drifted")
	seedVotes(t, gdb, post, 5, 2)

	// Corrupt the projection the way a lost race would
	gdb.Model(post).UpdateColumns(map[string]interface{}{
		"upvotes":       17,
		"downvotes":     0,
		"comment_count": 99,
	})

	r := NewReconciler(gdb)
	if err := r.Recount(post.ID); err != nil {
		t.Fatalf("Recount failed: %v", err)
	}

	var fresh models.Post
	gdb.First(&fresh, post.ID)
	if fresh.Upvotes != 5 || fresh.Downvotes != 2 {
		t.Errorf("expected recount to 5/2, got %d/%d", fresh.Upvotes, fresh.Downvotes)
	}
	if fresh.CommentCount != 0 {
		t.Errorf("expected comment_count 0, got %d", fresh.CommentCount)
	}

	assertLedgerConsistent(t, gdb, post.ID)
}
