package db

import (
	"log"
	"os"

	"neoforum/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=neoforum port=5432 sslmode=disable"
	}

	var err error
	// TranslateError lets callers match gorm.ErrDuplicatedKey on
	// unique-constraint conflicts (concurrent first votes, repeat reports).
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
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
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed initial forums
	seedForums()
}

func seedForums() {
	var count int64
	DB.Model(&models.Forum{}).Count(&count)
	if count > 0 {
		log.Println("Forums already seeded, skipping")
		return
	}

	forums := []models.Forum{
		{Slug: "general", Name: "General", Description: "General discussion"},
		{Slug: "tech", Name: "Technology", Description: "Programming, hardware and everything in between"},
		{Slug: "showcase", Name: "Showcase", Description: "Show off what you built"},
		{Slug: "meta", Name: "Meta", Description: "About the forum itself"},
	}

	for _, forum := range forums {
		if err := DB.Create(&forum).Error; err != nil {
			log.Printf("Failed to create forum %s: %v", forum.Slug, err)
		}
	}
	log.Println("Initial forums created successfully")
}
