package router

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/civic-connect/backend/internal/auth"
	"github.com/anonto42/civic-connect/backend/internal/handlers"
	"github.com/anonto42/civic-connect/backend/internal/middleware"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/repositories"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/anonto42/civic-connect/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"gorm.io/gorm"
)

// Dependencies are the connections and optional integrations the routes are
// built from. Leave an interface nil to disable the feature behind it.
type Dependencies struct {
	Config    *config.Config
	Postgres  *gorm.DB
	Mongo     *mongo.Client
	Firestore *firestore.Client
	Redis     *redis.Client

	FirebaseAuth auth.IDTokenVerifier
	Images       services.ImageHost
	Writer       services.DescriptionWriter
}

// SetupRoutes migrates the relational schema, builds the repositories and
// services, and registers every route.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies, log *zap.Logger) error {
	cfg := deps.Config

	// AutoMigrate PostgreSQL models
	err := deps.Postgres.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.AdminApplication{},
		&models.SavedIssue{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to auto migrate models")
	}
	log.Info("PostgreSQL auto-migrations completed")

	// --- Initialize Repositories ---
	issueRepo, voteRepo, err := documentStore(ctx, deps, log)
	if err != nil {
		return err
	}
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)
	applicationRepo := repositories.NewPostgresAdminApplicationRepository(deps.Postgres)
	savedIssueRepo := repositories.NewPostgresSavedIssueRepository(deps.Postgres)

	// --- Services ---
	ledger := services.NewLedger(issueRepo, voteRepo, notificationRepo, log)
	workflow := services.NewStatusWorkflow(issueRepo, notificationRepo, log)
	approvals := services.NewApprovals(applicationRepo, cfg.SuperAdminUID, log)
	reports := services.NewReports(issueRepo, userRepo, deps.Images, log)
	dashboard := services.NewDashboard(issueRepo, userRepo, applicationRepo)
	describer := services.NewDescriber(deps.Writer)

	// --- Session middleware ---
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	revoked := auth.NewRedisRevocationStore(deps.Redis)
	sessions := middleware.NewSessionAuth(tokens, revoked, log)
	requireAuth := sessions.Required()
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superAdminOnly := middleware.RequireRole(models.RoleSuperAdmin)
	reportLimit := middleware.ReportRateLimiter(middleware.NewRedisCounter(deps.Redis), cfg.ReportLimit, 24*time.Hour, log)

	// Health check - always accessible
	health := handlers.NewHealthHandler(healthChecks(deps), log)
	e.GET("/health", health.HealthCheck)

	// --- Public routes ---
	public := e.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, approvals, tokens, revoked, log)
	authHandler.RegisterAuthRoutes(public.Group("/auth"), requireAuth)

	issueHandler := handlers.NewIssueHandler(reports, describer)
	issueHandler.RegisterIssueRoutes(public, sessions.Optional(), reportLimit)

	leaderboardHandler := handlers.NewLeaderboardHandler(dashboard)
	leaderboardHandler.RegisterLeaderboardRoutes(public)
	log.Info("Public routes configured")

	// --- Protected routes (require a session) ---
	api := e.Group("/api/v1", requireAuth)

	voteHandler := handlers.NewVoteHandler(ledger)
	voteHandler.RegisterVoteRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo, deps.Images)
	userHandler.RegisterProfileRoutes(api)

	savedIssueHandler := handlers.NewSavedIssueHandler(savedIssueRepo, reports)
	savedIssueHandler.RegisterSavedIssueRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	adminHandler := handlers.NewAdminHandler(workflow, approvals, dashboard, voteHandler)
	adminHandler.RegisterAdminRoutes(api, adminOnly, superAdminOnly)
	log.Info("Protected routes configured")

	return nil
}

// documentStore picks the issue and vote repositories for the configured backend.
func documentStore(ctx context.Context, deps Dependencies, log *zap.Logger) (repositories.IssueRepository, repositories.VoteRepository, error) {
	switch deps.Config.DocumentStore {
	case config.StoreMongo:
		if deps.Mongo == nil {
			return nil, nil, errors.New("mongo document store selected without a MongoDB connection")
		}
		db := deps.Mongo.Database(deps.Config.MongoDatabase)
		issues := repositories.NewMongoIssueRepository(db)
		if err := issues.EnsureIndexes(ctx); err != nil {
			return nil, nil, errors.Wrap(err, "failed to create MongoDB indexes")
		}
		log.Info("Using MongoDB document store", zap.String("database", deps.Config.MongoDatabase))
		return issues, repositories.NewMongoVoteRepository(deps.Mongo, db), nil
	case config.StoreFirestore:
		if deps.Firestore == nil {
			return nil, nil, errors.New("firestore document store selected without a Firestore client")
		}
		log.Info("Using Firestore document store")
		return repositories.NewFirestoreIssueRepository(deps.Firestore), repositories.NewFirestoreVoteRepository(deps.Firestore), nil
	}
	return nil, nil, errors.Errorf("unknown document store %q", deps.Config.DocumentStore)
}

func healthChecks(deps Dependencies) map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := deps.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		},
	}
	if deps.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return deps.Mongo.Ping(ctx, readpref.Primary())
		}
	}
	if deps.Firestore != nil {
		checks["firestore"] = func(ctx context.Context) error {
			_, err := deps.Firestore.Collections(ctx).Next()
			if err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		}
	}
	return checks
}
