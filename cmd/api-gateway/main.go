package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-planner-api/api/swagger"
	"github.com/noah-isme/course-planner-api/internal/handler"
	"github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/cache"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/database"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
	"github.com/noah-isme/course-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-planner-api/pkg/storage"
)

const housekeepingInterval = 10 * time.Minute

// @title Course Planner API
// @version 0.1.0
// @description Multi-term course planning, saved plans and catalog management
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate schema", zap.Error(err))
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, plan cache disabled", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Planner.CacheTTL, logr, false)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Planner.CacheTTL, logr, true)
	}

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	planRepo := repository.NewPlanRepository(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(fileStorage, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: 24 * time.Hour,
	}, logr.Named("exports"))

	validate := validator.New()
	plannerSvc := service.NewPlannerService(service.PlannerDeps{
		Courses:      courseRepo,
		Students:     studentRepo,
		Requirements: requirementRepo,
		Plans:        planRepo,
		Cache:        cacheSvc,
		Exports:      exportSvc,
		Metrics:      metrics,
		Tx:           db,
	}, validate, logr.Named("planner"), service.PlannerConfig{
		Enabled:             cfg.Planner.Enabled,
		ProposalTTL:         cfg.Planner.ProposalTTL,
		CacheTTL:            cfg.Planner.CacheTTL,
		DefaultMaxTerms:     cfg.Planner.DefaultMaxTerms,
		DefaultMaxUnits:     cfg.Planner.DefaultMaxUnits,
		DefaultMinUnits:     cfg.Planner.DefaultMinUnits,
		DefaultOptimalUnits: cfg.Planner.DefaultOptimalUnits,
	})
	catalogSvc := service.NewCatalogService(courseRepo, db, cacheSvc, validate, logr.Named("catalog"))

	autosave := jobs.NewQueue[string]("plan-autosave", plannerSvc.AutoSaveHandler, jobs.QueueConfig{
		Workers:    cfg.Planner.AutoSaveWorkers,
		MaxRetries: cfg.Planner.AutoSaveRetries,
		RetryDelay: time.Second,
		Logger:     logr.Named("autosave"),
	})
	autosave.Start(ctx)
	defer autosave.Stop()
	plannerSvc.UseAutoSaveQueue(autosave)

	go housekeeping(ctx, logr, plannerSvc, exportSvc)

	tokens := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/exports/download", exportHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens), middleware.WithResponseMeta())

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor)
	anyone := middleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor, models.RoleStudent)

	courses := secured.Group("/courses")
	courses.GET("", anyone, catalogHandler.List)
	courses.GET("/:id", anyone, catalogHandler.Get)
	courses.POST("/import", middleware.RequireRoles(models.RoleAdmin), catalogHandler.Import)

	plans := secured.Group("/plans")
	plans.POST("/generate", anyone, plannerHandler.Generate)
	plans.POST("/score", anyone, plannerHandler.Score)
	plans.POST("/conflicts", anyone, plannerHandler.Conflicts)
	plans.POST("/validate", anyone, plannerHandler.Validate)
	plans.POST("", anyone, plannerHandler.Save)
	plans.GET("", middleware.RBAC(string(models.RoleAdmin), string(models.RoleAdvisor), middleware.RoleSelf), plannerHandler.List)
	plans.GET("/:id", anyone, plannerHandler.Get)
	plans.POST("/:id/activate", anyone, plannerHandler.Activate)
	plans.POST("/:id/export", anyone, plannerHandler.Export)
	plans.DELETE("/:id", anyone, plannerHandler.Delete)

	secured.GET("/metrics/summary", staff, metricsHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func housekeeping(ctx context.Context, logr *zap.Logger, planner *service.PlannerService, exports *service.ExportService) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := planner.SweepProposals(); n > 0 {
				logr.Debug("expired proposals swept", zap.Int("count", n))
			}
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
