package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/supplenze/supplenze-api/api/swagger"
	"github.com/supplenze/supplenze-api/internal/handler"
	"github.com/supplenze/supplenze-api/internal/middleware"
	"github.com/supplenze/supplenze-api/internal/repository"
	"github.com/supplenze/supplenze-api/internal/service"
	"github.com/supplenze/supplenze-api/pkg/cache"
	"github.com/supplenze/supplenze-api/pkg/config"
	"github.com/supplenze/supplenze-api/pkg/database"
	"github.com/supplenze/supplenze-api/pkg/jobs"
	"github.com/supplenze/supplenze-api/pkg/logger"
	corsmiddleware "github.com/supplenze/supplenze-api/pkg/middleware/cors"
	reqidmiddleware "github.com/supplenze/supplenze-api/pkg/middleware/requestid"
	"github.com/supplenze/supplenze-api/pkg/storage"
)

// @title Supplenze API
// @version 1.0.0
// @description Timetable import and substitute teacher matching
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Matcher.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, matcher cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Matcher.CacheTTL, logr, true)
		}
	}

	refreshQueue := jobs.NewQueue("dashboard-refresh", func(ctx context.Context, job jobs.Job) error {
		userID, _ := job.Payload.(string)
		logr.Info("dashboard refresh requested", zap.String("user_id", userID))
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	refreshQueue.Start(context.Background())
	defer refreshQueue.Stop()

	userRepo := repository.NewUserRepository(db)
	importRepo := repository.NewImportRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "supplenze-api",
	})

	var importService *service.ImportService
	if cfg.Archive.Enabled {
		archive, err := storage.NewLocalStorage(cfg.Archive.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init archive storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Archive.SignedURLSecret, cfg.Archive.SignedURLTTL)
		importService = service.NewImportService(importRepo, archive, signer, cacheService, metrics, refreshQueue, nil, logr)
	} else {
		importService = service.NewImportService(importRepo, nil, nil, cacheService, metrics, refreshQueue, nil, logr)
	}

	absenceService := service.NewAbsenceService(absenceRepo, cacheService, nil, logr)
	substituteService := service.NewSubstituteService(teacherRepo, cacheService, metrics, cfg.Matcher.CacheTTL, logr)
	exportService := service.NewExportService(absenceRepo, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authService)
	importHandler := handler.NewImportHandler(importService)
	absenceHandler := handler.NewAbsenceHandler(absenceService)
	teacherHandler := handler.NewTeacherHandler(substituteService)
	exportHandler := handler.NewExportHandler(exportService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.POST("/imports", importHandler.Upload)
	protected.GET("/imports", importHandler.List)
	protected.PATCH("/imports/:id", importHandler.UpdateWindow)
	protected.DELETE("/imports/:id", importHandler.Delete)
	protected.GET("/imports/:id/archive-link", importHandler.ArchiveLink)

	// Download is authorized by the signed token itself.
	api.GET("/archives/:token", importHandler.DownloadArchive)

	protected.POST("/absences", absenceHandler.Declare)
	protected.GET("/absences", absenceHandler.ListByDate)
	protected.PATCH("/absences/:id", absenceHandler.UpdateStatus)
	protected.DELETE("/absences/:id", absenceHandler.Delete)

	protected.GET("/teachers/available/:absence_id", teacherHandler.Available)
	protected.GET("/teachers/can_be_absent", teacherHandler.CanBeAbsent)

	protected.GET("/exports/daily-plan", exportHandler.DailyPlan)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
