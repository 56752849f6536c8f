package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/Lalfakawma-Vangchhia/dashboard-automation/configs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/api/handlers"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/api/middleware"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/jobs"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/repository"
	"github.com/Lalfakawma-Vangchhia/dashboard-automation/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	logg := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	bulkComposerRepo := repository.NewBulkComposerRepository(db)
	automationRuleRepo := repository.NewAutomationRuleRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	groqService := service.NewGroqService(*cfg)
	stabilityService := service.NewStabilityService(*cfg)
	r2Service := service.NewR2Service(*cfg)
	instagramService := service.NewInstagramService(*cfg)
	facebookService := service.NewFacebookService(*cfg)
	driveService := service.NewDriveService(*cfg)

	autoReplyJob := jobs.NewAutoReplyJob(*cfg, automationRuleRepo, socialAccountRepo, groqService, instagramService, facebookService, logg)
	scheduledPostJob := jobs.NewScheduledPostJob(*cfg, scheduledPostRepo, socialAccountRepo, instagramService, facebookService, groqService, stabilityService, r2Service, autoReplyJob, logg)
	bulkComposerJob := jobs.NewBulkComposerJob(*cfg, bulkComposerRepo, socialAccountRepo, instagramService, facebookService, logg)
	refreshTokenJob := jobs.NewTokenRefreshJob(*cfg, socialAccountRepo, instagramService, logg)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(db, scheduledPostRepo, socialAccountRepo)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Get("/posts/scheduled", post.ListScheduledPosts)
	api.Post("/posts/scheduled/cancel", post.CancelScheduledPost)

	bulk := handlers.NewBulkComposerHandler(db, bulkComposerRepo, socialAccountRepo, driveService, r2Service, bulkComposerJob)
	api.Post("/bulk-composer/import", bulk.Import)
	api.Get("/bulk-composer", bulk.List)
	api.Get("/bulk-composer/drive-files", bulk.ListDriveFiles)
	api.Post("/bulk-composer/retry", bulk.Retry)

	automation := handlers.NewAutomationHandler(automationRuleRepo, socialAccountRepo)
	api.Post("/automation/auto-reply", automation.ToggleAutoReply)
	api.Get("/automation/auto-reply", automation.GetAutoReply)
	api.Get("/automation/rules", automation.ListRules)

	account := handlers.NewAccountHandler(socialAccountRepo)
	api.Get("/accounts", account.ListAccounts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduledPostJob.Run(ctx)
	go bulkComposerJob.Run(ctx)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, cancel)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, cancel context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	cancel()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
