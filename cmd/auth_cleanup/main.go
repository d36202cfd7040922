package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/repository"
)

// Sweeps revocation records whose mirrored token expiry has passed. Run
// from cron; records past their exp are dead weight, the tokens they
// match are rejected by signature checks anyway.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := repository.NewRevokedTokenRepository(db).DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("cleanup revoked_tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: revoked_tokens=%d", removed)
}
