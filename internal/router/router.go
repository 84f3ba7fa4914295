package router

import (
	"neoforum/internal/db"
	"neoforum/internal/handlers"
	"neoforum/internal/middleware"
	"neoforum/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Services
	notificationService := services.NewNotificationService(db.DB, db.RDB)
	voteService := services.NewVoteService(db.DB)
	reportService := services.NewReportService(db.DB, notificationService)
	supportService := services.NewSupportService(db.DB, services.NewMailService())

	// Handlers
	authHandler := handlers.NewAuthHandler()
	forumHandler := handlers.NewForumHandler()
	postHandler := handlers.NewPostHandler(notificationService, voteService)
	voteHandler := handlers.NewVoteHandler(voteService)
	reportHandler := handlers.NewReportHandler(reportService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	bookmarkHandler := handlers.NewBookmarkHandler()
	supportHandler := handlers.NewSupportHandler(supportService)
	userHandler := handlers.NewUserHandler()
	adminHandler := handlers.NewAdminHandler(reportService, supportService, notificationService)

	api := r.Group("/api")

	// Public routes
	api.GET("/forums", forumHandler.List)                    // forum directory
	api.GET("/forums/:slug/posts", postHandler.ListByForum)  // forum listing
	api.GET("/posts/:pid", postHandler.Detail)               // post detail with comments
	api.GET("/users/:id", userHandler.Profile)               // public profile
	api.GET("/auth/captcha", authHandler.Captcha)            // signup captcha
	api.POST("/auth/signup", authHandler.Register)           // register
	api.POST("/auth/login", authHandler.Login)               // login
	api.POST("/auth/logout", authHandler.Logout)             // logout
	api.POST("/support", supportHandler.Create)              // support tickets work logged-out too

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.POST("/me/settings", userHandler.UpdateSettings)
		authorized.GET("/me/reputation", userHandler.ReputationLogs)

		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/posts/:pid/status", postHandler.UpdateStatus)
		authorized.POST("/posts/:pid/comments", postHandler.CreateComment)
		authorized.POST("/posts/:pid/vote", voteHandler.Cast)
		authorized.POST("/posts/:pid/report", reportHandler.File)
		authorized.POST("/posts/:pid/bookmark", bookmarkHandler.Toggle)
		authorized.GET("/bookmarks", bookmarkHandler.Mine)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount) // polled by clients
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/reports", adminHandler.ListReports)
		admin.POST("/reports/:id", adminHandler.TriageReport)
		admin.GET("/support", adminHandler.ListSupport)
		admin.POST("/support/:id", adminHandler.UpdateSupport)
		admin.POST("/posts/:pid/takedown", adminHandler.TakedownPost)
		admin.POST("/users/:id/punish", adminHandler.PunishUser)
	}
}
