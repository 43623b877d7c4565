package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/civic-connect/backend/internal/router"
	"github.com/anonto42/civic-connect/backend/pkg/ai"
	"github.com/anonto42/civic-connect/backend/pkg/config"
	"github.com/anonto42/civic-connect/backend/pkg/firebase"
	"github.com/anonto42/civic-connect/backend/pkg/logger"
	"github.com/anonto42/civic-connect/backend/pkg/storage"
	"github.com/anonto42/civic-connect/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	deps := router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Redis:    db.Redis,
	}

	// Initialize Firebase. It is optional unless Firestore holds the issues.
	withFirestore := cfg.DocumentStore == config.StoreFirestore
	if cfg.FirebaseCredentialsPath != "" || withFirestore {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, withFirestore)
		if err != nil {
			zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		defer firebaseApp.Close()
		deps.FirebaseAuth = firebaseApp.AuthClient
		deps.Firestore = firebaseApp.Firestore
		zlog.Info("Firebase initialized", zap.Bool("firestore", withFirestore))
	} else {
		zlog.Warn("Firebase not configured, Google sign-in is disabled")
	}

	if cfg.ImageBucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.ImageBucket)
		if err != nil {
			zlog.Fatal("Failed to initialize S3 uploader", zap.Error(err))
		}
		deps.Images = uploader
	} else {
		zlog.Warn("IMAGE_BUCKET not set, image uploads are disabled")
	}

	if cfg.GeminiAPIKey != "" {
		writer, err := ai.NewGeminiWriter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			zlog.Fatal("Failed to initialize Gemini client", zap.Error(err))
		}
		deps.Writer = writer
	} else {
		zlog.Warn("GEMINI_API_KEY not set, description drafting is disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, zlog)

	// Setup routes and dependencies
	if err := router.SetupRoutes(ctx, e, deps, zlog); err != nil {
		zlog.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Start server
	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			zlog.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Graceful shutdown failed", zap.Error(err))
	}
}
