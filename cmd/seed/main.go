package main

import (
	"log"

	"github.com/joho/godotenv"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/domain"
	"microblog/internal/pkg/password"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM posts")
	db.Exec("DELETE FROM revoked_tokens")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	adminHash, err := password.Hash("admin123")
	if err != nil {
		log.Fatal(err)
	}
	admin := domain.User{
		Email:        "admin@example.com",
		Username:     "admin",
		PasswordHash: adminHash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("seed admin failed:", err)
	}

	userHash, err := password.Hash("password123")
	if err != nil {
		log.Fatal(err)
	}
	user := domain.User{
		Email:        "user@example.com",
		Username:     "normaluser",
		PasswordHash: userHash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("seed user failed:", err)
	}

	log.Println("Creating posts...")
	postSamples := []domain.Post{
		{Title: "Hello world", Content: "First post on the platform.", OwnerID: user.ID},
		{Title: "Welcome", Content: "Admin announcements land here.", OwnerID: admin.ID},
	}
	for i := range postSamples {
		if err := db.Create(&postSamples[i]).Error; err != nil {
			log.Fatal("seed post failed:", err)
		}
	}

	log.Printf("Seed complete: users=2 posts=%d", len(postSamples))
}
