package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/router"
	"neoforum/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp points the global DB at an in-memory database and builds
// the full route tree on top of it.
func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// Every pooled connection to :memory: would get its own database
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&models.User{}, &models.Forum{}, &models.Post{}, &models.Comment{},
		&models.Vote{}, &models.Report{}, &models.Notification{},
		&models.SupportMessage{}, &models.Bookmark{}, &models.ReputationLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gdb.Create(&models.Forum{Slug: "general", Name: "General"}).Error; err != nil {
		t.Fatalf("seed forum: %v", err)
	}
	db.DB = gdb

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("neoforum_session", store))
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

func seedLoginUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedVotablePost(t *testing.T, author *models.User) *models.Post {
	t.Helper()
	post := models.Post{
		Pid:     "votetest",
		Title:   "cast away",
		UserID:  author.ID,
		ForumID: 1,
		Status:  models.PostStatusPublished,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return &post
}

// login posts credentials and returns the session cookies to replay.
func login(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(gin.H{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func TestCastVoteEndpoint(t *testing.T) {
	r := setupTestApp(t)

	author := seedLoginUser(t, "author", "password1")
	seedLoginUser(t, "voter", "password2")
	post := seedVotablePost(t, author)

	cookies := login(t, r, "voter@example.com", "password2")

	cast := func(voteType int) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"vote_type": voteType})
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/posts/%s/vote", post.Pid), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := cast(1)
	if w.Code != http.StatusOK {
		t.Fatalf("vote returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success  bool   `json:"success"`
		Upvotes  int    `json:"upvotes"`
		UserVote *int   `json:"user_vote"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Upvotes != 1 || resp.UserVote == nil || *resp.UserVote != 1 {
		t.Errorf("unexpected response: %s", w.Body.String())
	}

	// Voting again retracts
	w = cast(1)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Upvotes != 0 || resp.UserVote != nil {
		t.Errorf("expected retraction, got: %s", w.Body.String())
	}

	// Bad vote type gets the validation treatment
	w = cast(5)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for vote_type 5, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCastVoteRequiresLogin(t *testing.T) {
	r := setupTestApp(t)

	author := seedLoginUser(t, "author", "password1")
	post := seedVotablePost(t, author)

	body, _ := json.Marshal(gin.H{"vote_type": 1})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/posts/%s/vote", post.Pid), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var resp struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Redirect != "/login" {
		t.Errorf("expected redirect to /login, got: %s", w.Body.String())
	}

	// Missing post 404s even with a session
	cookies := login(t, r, "author@example.com", "password1")
	req = httptest.NewRequest(http.MethodPost, "/api/posts/nope1234/vote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown post, got %d", w.Code)
	}
}
