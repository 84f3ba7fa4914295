package services

import (
	"fmt"
	"testing"

	"neoforum/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every pooled connection to :memory: would get its own database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Forum{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Report{},
		&models.Notification{},
		&models.SupportMessage{},
		&models.Bookmark{},
		&models.ReputationLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	forum := models.Forum{Slug: "general", Name: "General"}
	if err := gdb.Create(&forum).Error; err != nil {
		t.Fatalf("failed to seed forum: %v", err)
	}

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "x",
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return &user
}

func seedAdmin(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	admin := seedUser(t, gdb, username)
	if err := gdb.Model(admin).Update("role", "admin").Error; err != nil {
		t.Fatalf("failed to promote %s: %v", username, err)
	}
	return admin
}

var pidSeq int

func seedPost(t *testing.T, gdb *gorm.DB, author *models.User, title string) *models.Post {
	t.Helper()

	pidSeq++
	post := models.Post{
		Pid:     fmt.Sprintf("p%07d", pidSeq),
		UserID:  author.ID,
		ForumID: 1,
		Title:   title,
		Status:  models.PostStatusPublished,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %q: %v", title, err)
	}
	return &post
}

// seedVotes writes ledger rows from other users and syncs the post
// counters, so tests start from a consistent state.
func seedVotes(t *testing.T, gdb *gorm.DB, post *models.Post, up, down int) {
	t.Helper()

	for i := 0; i < up; i++ {
		voter := seedUser(t, gdb, fmt.Sprintf("up_%d_%d", post.ID, i))
		if err := gdb.Create(&models.Vote{UserID: voter.ID, PostID: post.ID, Value: 1}).Error; err != nil {
			t.Fatalf("failed to seed upvote: %v", err)
		}
	}
	for i := 0; i < down; i++ {
		voter := seedUser(t, gdb, fmt.Sprintf("down_%d_%d", post.ID, i))
		if err := gdb.Create(&models.Vote{UserID: voter.ID, PostID: post.ID, Value: -1}).Error; err != nil {
			t.Fatalf("failed to seed downvote: %v", err)
		}
	}

	if err := gdb.Model(post).UpdateColumns(map[string]interface{}{
		"upvotes":   up,
		"downvotes": down,
	}).Error; err != nil {
		t.Fatalf("failed to sync counters: %v", err)
	}
}

// assertLedgerConsistent checks that the post counters equal the live
// ledger counts of each polarity.
func assertLedgerConsistent(t *testing.T, gdb *gorm.DB, postID uint) {
	t.Helper()

	var post models.Post
	if err := gdb.First(&post, postID).Error; err != nil {
		t.Fatalf("post %d disappeared: %v", postID, err)
	}

	var up, down int64
	gdb.Model(&models.Vote{}).Where("post_id = ? AND value = 1", postID).Count(&up)
	gdb.Model(&models.Vote{}).Where("post_id = ? AND value = -1", postID).Count(&down)

	if int64(post.Upvotes) != up || int64(post.Downvotes) != down {
		t.Fatalf("counters drifted from ledger: post has %d/%d, ledger has %d/%d",
			post.Upvotes, post.Downvotes, up, down)
	}
}
