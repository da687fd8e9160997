package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sharath018/invitation-backend/config"
	"github.com/sharath018/invitation-backend/internal/auditlog"
	"github.com/sharath018/invitation-backend/internal/auth"
	"github.com/sharath018/invitation-backend/internal/display"
	"github.com/sharath018/invitation-backend/internal/invitation"
	"github.com/sharath018/invitation-backend/internal/notification"
	"github.com/sharath018/invitation-backend/internal/rsvp"
	"github.com/sharath018/invitation-backend/internal/storage"
	"github.com/sharath018/invitation-backend/internal/template"
	"github.com/sharath018/invitation-backend/middleware"
	"gorm.io/gorm"

	_ "github.com/sharath018/invitation-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the clients built once in main and shared by every route.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Store  storage.ObjectStore
	Events notification.Publisher
	Redis  *redis.Client // nil keeps rate-limit counters in memory
	Log    zerolog.Logger
}

func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config

	if cfg.StorageDriver == config.StorageLocal {
		r.Static("/uploads", cfg.UploadDir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, d.Redis, d.Log))
	api.Use(middleware.AuditMiddleware())

	// ===========================
	// 🔧 Services
	// ===========================
	auditSvc := auditlog.NewService(auditlog.NewRepository(d.DB))
	auditHandler := auditlog.NewHandler(auditSvc)

	authSvc := auth.NewService(auth.NewRepository(d.DB), auditSvc, cfg, d.Log)
	authHandler := auth.NewHandler(authSvc)

	templateSvc := template.NewService(template.NewRepository(d.DB), auditSvc, d.Log)
	templateHandler := template.NewHandler(templateSvc)

	invitationSvc := invitation.NewService(
		invitation.NewRepository(d.DB),
		templateSvc,
		storage.NewCoordinator(d.Store, d.Log),
		auditSvc,
		d.Events,
		cfg.PublicBaseURL,
		d.Log,
	)
	invitationHandler := invitation.NewHandler(invitationSvc)

	rsvpSvc := rsvp.NewService(rsvp.NewRepository(d.DB), invitationSvc, templateSvc, auditSvc, d.Events, d.Log)
	rsvpHandler := rsvp.NewHandler(rsvpSvc)

	displayHandler := display.NewHandler(display.NewService(invitationSvc), d.Log)

	// ===========================
	// 🔐 Auth
	// ===========================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", middleware.AuthMiddleware(authSvc), authHandler.Me)
	}

	// ===========================
	// 🌍 Public invitation page and RSVP
	// ===========================
	public := api.Group("/public/invitations")
	{
		public.GET("/:id", displayHandler.GetPublicInvitation)
		public.POST("/:id/rsvps", rsvpHandler.SubmitRSVP)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// ===========================
	// 📄 Templates (read) and invitation creation
	// ===========================
	templates := protected.Group("/templates")
	{
		templates.GET("", templateHandler.ListTemplates)
		templates.GET("/:id", templateHandler.GetTemplate)
		templates.GET("/:id/form", invitationHandler.GetTemplateForm)
		templates.POST("/:id/invitations", invitationHandler.CreateInvitation)
	}

	// ===========================
	// 💌 Owned invitations
	// ===========================
	invitations := protected.Group("/invitations")
	{
		invitations.GET("", invitationHandler.ListInvitations)
		invitations.GET("/:id/form", invitationHandler.GetEditForm)
		invitations.PUT("/:id", invitationHandler.UpdateInvitation)
		invitations.DELETE("/:id", invitationHandler.DeleteInvitation)
		invitations.GET("/:id/qr", invitationHandler.GetQRCode)
		invitations.GET("/:id/guests", rsvpHandler.GetGuestList)
		invitations.GET("/:id/guests/export", rsvpHandler.ExportGuestList)
	}

	// ===========================
	// 👑 Admin
	// ===========================
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/templates", templateHandler.ListTemplates)
		admin.POST("/templates", templateHandler.CreateTemplate)
		admin.GET("/templates/:id", templateHandler.GetTemplate)
		admin.PUT("/templates/:id", templateHandler.UpdateTemplate)
		admin.DELETE("/templates/:id", templateHandler.DeleteTemplate)

		admin.GET("/auditlogs", auditHandler.GetAuditLogs)
		admin.GET("/auditlogs/:id", auditHandler.GetAuditLogByID)
	}
}
