package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cragbase-api/config"
	"cragbase-api/database"
	"cragbase-api/jobs"
	"cragbase-api/middleware"
	"cragbase-api/routes"
	"cragbase-api/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Seed the grade ladder and role permission rows
	if err := database.SeedData(db); err != nil {
		log.Warn().Err(err).Msg("failed to seed database")
	}

	emailService := services.NewEmailService(cfg)
	permissionService := services.NewPermissionService(db)

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(120, 20))

	routes.SetupRoutes(router, db, cfg, emailService, permissionService)

	// Purge old read notifications daily, keeping 30 days
	cleanupJob := jobs.NewNotificationCleanupJob(db, 24*time.Hour, 30*24*time.Hour)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
