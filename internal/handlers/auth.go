package handlers

import (
	"strings"

	"neoforum/internal/db"
	"neoforum/internal/middleware"
	"neoforum/internal/models"
	"neoforum/internal/services"
	"neoforum/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		captchaService: services.NewCaptchaService(),
	}
}

// Captcha hands out a math problem and parks the answer in the session.
func (h *AuthHandler) Captcha(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	OK(c, gin.H{"captcha": question})
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "body", Reason: "malformed request"})
		return
	}

	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(req.Captcha) != expectedAnswer {
		Fail(c, &services.ValidationError{Field: "captcha", Reason: "wrong answer"})
		return
	}
	session.Delete("captcha_answer")
	session.Save()

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(email, "@") {
		Fail(c, &services.ValidationError{Field: "email", Reason: "valid address required"})
		return
	}
	if len(req.Password) < 6 {
		Fail(c, &services.ValidationError{Field: "password", Reason: "at least 6 characters"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		Fail(c, err)
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   utils.RandomEmoji(),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		Fail(c, services.ErrDuplicate)
		return
	}

	session.Set("user_id", user.ID)
	session.Save()

	OK(c, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, &services.ValidationError{Field: "body", Reason: "malformed request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Fail(c, services.ErrNotFound)
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		Fail(c, &services.ValidationError{Field: "password", Reason: "wrong email or password"})
		return
	}
	if user.Status == 2 {
		Fail(c, services.ErrForbidden)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	OK(c, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	OK(c, nil)
}

// Me returns the resolved identity, for session bootstrap on the client.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		Fail(c, services.ErrUnauthenticated)
		return
	}

	tier, icon := utils.ReputationTier(user.Reputation)
	OK(c, gin.H{
		"user":      user,
		"tier":      tier,
		"tier_icon": icon,
		"days":      utils.DaysSinceJoined(user.CreatedAt),
	})
}
