package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/controllers"
	"github.com/gracechapel/churchweb/middleware"
	"github.com/gracechapel/churchweb/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Locally stored uploads are served from here
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	sermonController := controllers.NewSermonController(db)
	eventController := controllers.NewEventController(db)
	galleryController := controllers.NewGalleryController(db)
	orgController := controllers.NewOrganizationController(db)
	aboutController := controllers.NewAboutController(db)
	settingsController := controllers.NewSettingsController(db)
	uploadController := controllers.NewUploadController(db)
	givingController := controllers.NewGivingController(db)
	chatController := controllers.NewChatController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public content
	api.GET("/sermons", sermonController.ListSermons)
	api.GET("/sermons/:id", sermonController.GetSermon)
	api.GET("/events", eventController.ListEvents)
	api.GET("/events/:id", eventController.GetEvent)
	api.GET("/gallery", galleryController.ListImages)
	api.GET("/organizations", orgController.ListOrganizations)
	api.GET("/about", aboutController.GetAboutPage)
	api.GET("/settings", settingsController.ListSettings)

	// Giving: public creation plus provider callbacks
	givingGroup := api.Group("/giving")
	givingGroup.POST("", middleware.RateLimitMiddleware(), givingController.CreateGiving)
	givingGroup.POST("/webhook/paystack", givingController.PaystackWebhook)
	givingGroup.POST("/webhook/flutterwave", givingController.FlutterwaveWebhook)

	api.POST("/chat", middleware.RateLimitMiddleware(), chatController.Chat)

	// Everything below requires an authenticated admin
	admin := api.Group("")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())

	admin.POST("/sermons", sermonController.CreateSermon)
	admin.PUT("/sermons/:id", sermonController.UpdateSermon)
	admin.DELETE("/sermons/:id", sermonController.DeleteSermon)

	admin.POST("/events", eventController.CreateEvent)
	admin.PUT("/events/:id", eventController.UpdateEvent)
	admin.DELETE("/events/:id", eventController.DeleteEvent)

	admin.POST("/gallery", galleryController.CreateImage)
	admin.PUT("/gallery/:id", galleryController.UpdateImage)
	admin.DELETE("/gallery/:id", galleryController.DeleteImage)

	admin.POST("/organizations", orgController.CreateOrganization)
	admin.PUT("/organizations/:id", orgController.UpdateOrganization)
	admin.DELETE("/organizations/:id", orgController.DeleteOrganization)

	admin.PUT("/about/sections", aboutController.UpsertSection)
	admin.DELETE("/about/sections/:section", aboutController.DeleteSection)
	admin.POST("/about/beliefs", aboutController.CreateBelief)
	admin.PUT("/about/beliefs/:id", aboutController.UpdateBelief)
	admin.DELETE("/about/beliefs/:id", aboutController.DeleteBelief)
	admin.POST("/about/leadership", aboutController.CreateLeader)
	admin.PUT("/about/leadership/:id", aboutController.UpdateLeader)
	admin.DELETE("/about/leadership/:id", aboutController.DeleteLeader)

	admin.PUT("/settings", settingsController.UpsertSetting)
	admin.DELETE("/settings/:key", settingsController.DeleteSetting)

	admin.POST("/uploads", uploadController.Upload)
	admin.POST("/uploads/presign", uploadController.Presign)
	// note: /uploads/:id/confirm would conflict with /uploads/presign in
	// gin's route tree, hence /uploads/confirm/:id
	admin.POST("/uploads/confirm/:id", uploadController.Confirm)
	admin.GET("/uploads", uploadController.ListUploads)
	admin.DELETE("/uploads/:id", uploadController.Delete)

	admin.GET("/giving", givingController.ListTransactions)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
