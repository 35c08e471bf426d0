package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gruenhof/schoolyard-api/api/swagger"
	"github.com/gruenhof/schoolyard-api/internal/handler"
	"github.com/gruenhof/schoolyard-api/internal/middleware"
	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/repository"
	"github.com/gruenhof/schoolyard-api/internal/reward"
	"github.com/gruenhof/schoolyard-api/internal/service"
	"github.com/gruenhof/schoolyard-api/pkg/cache"
	"github.com/gruenhof/schoolyard-api/pkg/config"
	"github.com/gruenhof/schoolyard-api/pkg/database"
	"github.com/gruenhof/schoolyard-api/pkg/logger"
	corsmiddleware "github.com/gruenhof/schoolyard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gruenhof/schoolyard-api/pkg/middleware/requestid"
	"github.com/gruenhof/schoolyard-api/pkg/storage"
)

// @title Schoolyard API
// @version 1.0.0
// @description Classroom mascot and mission backend
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	}

	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)

	validate := validator.New()
	engine := reward.NewEngine(reward.DecayRates{
		Thirst:      cfg.Mascot.ThirstDecayPerHour,
		Hunger:      cfg.Mascot.HungerDecayPerHour,
		Happiness:   cfg.Mascot.HappinessDecayPerHour,
		Cleanliness: cfg.Mascot.CleanlinessDecayPerHour,
	}, cfg.Mascot.MinDecayInterval)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	mascotRepo := repository.NewMascotRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Activities.CacheTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Activities.CacheTTL, logr, false)
	}

	authSvc := service.NewAuthService(userRepo, classRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "schoolyard-api",
	})
	classSvc := service.NewClassService(classRepo, validate, logr)
	missionSvc := service.NewMissionService(missionRepo, classRepo, validate, logr)
	mascotSvc := service.NewMascotService(mascotRepo, classRepo, engine, logr)
	submissionSvc := service.NewSubmissionService(
		submissionRepo, missionRepo, classRepo, userRepo,
		photoStore, cacheSvc, metricsSvc, engine, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, classRepo, cacheSvc, cfg.Activities.PageSize, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc)
	missionHandler := handler.NewMissionHandler(missionSvc)
	mascotHandler := handler.NewMascotHandler(mascotSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, signer, cfg.Photos)
	activityHandler := handler.NewActivityHandler(activitySvc)
	photoHandler := handler.NewPhotoHandler(photoStore, signer)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/photos/:token", photoHandler.Serve)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			classes := protected.Group("/classes")
			{
				classes.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), classHandler.Create)
				classes.GET("/:id", classHandler.Get)
				classes.POST("/:id/join", classHandler.Join)
				classes.GET("/:id/sectors", classHandler.ListSectors)
				classes.POST("/:id/sectors", classHandler.CreateSector)
				classes.GET("/:id/mascot", mascotHandler.Get)
				classes.GET("/:id/activities", activityHandler.List)
			}

			missions := protected.Group("/missions")
			{
				missions.GET("", missionHandler.List)
				missions.POST("", missionHandler.Create)
				missions.GET("/:id", missionHandler.Get)
				missions.PUT("/:id", missionHandler.Update)
				missions.DELETE("/:id", missionHandler.Delete)
				missions.POST("/:id/submissions", submissionHandler.Accept)
			}

			submissions := protected.Group("/submissions")
			{
				submissions.GET("", submissionHandler.List)
				submissions.GET("/:id", submissionHandler.Get)
				submissions.POST("/:id/photo", submissionHandler.UploadPhoto)
				submissions.GET("/:id/photo", submissionHandler.PhotoURL)
				submissions.POST("/:id/review", submissionHandler.Review)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"decay_interval", cfg.Mascot.MinDecayInterval.String(),
		"cache_ttl", cfg.Activities.CacheTTL.Round(time.Second).String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
