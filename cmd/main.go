package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/config"
	"github.com/sharath018/invitation-backend/database"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"github.com/sharath018/invitation-backend/internal/auth"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/rsvp"
	"github.com/sharath018/invitation-backend/internal/storage"
	"github.com/sharath018/invitation-backend/internal/template"
	"github.com/sharath018/invitation-backend/routes"
	"github.com/sharath018/invitation-backend/utils"
)

// @title Invitation API
// @version 1.0
// @description Template-driven digital invitations with guest RSVPs.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	ctx := context.Background()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}

	// Auto-migrate models
	log.Info().Msg("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&template.Template{},
		&invitation.Invitation{},
		&rsvp.RSVP{},
	); err != nil {
		log.Fatal().Err(err).Msg("❌ DB AutoMigrate failed")
	}
	log.Info().Msg("✅ Database migrations completed")

	if err := template.SeedBuiltins(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to seed templates")
	}

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	if err := auth.NewService(auth.NewRepository(db), auditSvc, cfg, log).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to seed admin")
	}

	redisClient, err := utils.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis unavailable, rate limits kept in memory")
	}

	var events notification.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		events = notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("✅ Kafka publisher ready")
	} else {
		events = notification.NewLogPublisher(log)
		log.Info().Msg("ℹ️ KAFKA_BROKERS not set, events are only logged")
	}
	defer events.Close()

	store, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("❌ Object storage init failed")
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, routes.Deps{
		DB:     db,
		Config: cfg,
		Store:  store,
		Events: events,
		Redis:  redisClient,
		Log:    log,
	})

	log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("🚀 Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.ObjectStore, error) {
	if cfg.StorageDriver == config.StorageFirebase {
		return storage.NewFirebaseStore(ctx, storage.FirebaseConfig{
			CredentialsFile: cfg.FirebaseCredentials,
			ProjectID:       cfg.FirebaseProjectID,
			Bucket:          cfg.FirebaseStorageBucket,
		}, log)
	}
	log.Info().Str("dir", cfg.UploadDir).Msg("📁 Storing uploads on local disk")
	return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
}
