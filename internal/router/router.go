package router

import (
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/veilroom/backend/internal/confessions"
	"github.com/veilroom/backend/internal/handlers"
	"github.com/veilroom/backend/internal/middleware"
	"github.com/veilroom/backend/internal/models"
	"github.com/veilroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgdb *mongo.Database, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories and services ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	confessionRepo := repositories.NewMongoConfessionRepository(mgdb)
	confessionSvc := confessions.NewService(confessionRepo, repositories.NewUserDirectory(userRepo))

	// --- Unprotected routes ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	confessionHandler := handlers.NewConfessionHandler(confessionSvc)
	confessionHandler.RegisterPublicRoutes(e.Group(""))
	log.Println("Public confession routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to protected routes.")

	authHandler.RegisterProtectedAuthRoutes(api)

	// 10 confessions per 15 minutes per user
	createLimiter := middleware.PerUserRateLimiter(rate.Every(15*time.Minute/10), 10)
	confessionHandler.RegisterProtectedRoutes(api, createLimiter)
	log.Println("Confession routes configured.")

	log.Println("All routes configured.")
}
