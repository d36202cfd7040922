package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/middleware"
	"microblog/internal/modules/admin"
	"microblog/internal/modules/auth"
	"microblog/internal/modules/posts"
	"microblog/internal/pkg/response"
	"microblog/internal/pkg/token"
	"microblog/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	postRepo := repository.NewPostRepository(db)

	codec := token.New(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authService := auth.NewService(userRepo, revokedRepo, codec, cfg.TokenHashPepper, cfg.RefreshTokenTTL, cfg.RevocationFailOpen)
	authHandler := auth.NewHandler(authService)

	postService := posts.NewService(postRepo)
	postHandler := posts.NewHandler(postService)

	adminHandler := admin.NewHandler(userRepo)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, 200, gin.H{"status": "OK", "service": "microblog"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		postHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			postHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
			}
		}
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
