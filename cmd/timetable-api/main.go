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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/remote"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

// @title School Timetable API
// @version 1.0.0
// @description Timetable scheduling coordinator: conflict-checked lesson placement, bulk batches and week templates for multi-school deployments.
// @BasePath /
// @schemes http https
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

	metrics := service.NewMetricsService()

	backend, err := openStores(ctx, cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to open persistence driver", zap.String("driver", cfg.PersistenceDriver), zap.Error(err))
	}
	defer backend.close()

	var redisClient *redis.Client
	if cfg.Registry.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("registry cache disabled, redis unavailable", zap.Error(err))
		} else {
			backend.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Registry.CacheTTL, logr, cfg.Registry.CacheEnabled && redisClient != nil)

	validate := service.NewValidator()
	registrySvc := service.NewRegistryService(backend.registry, cacheSvc, metrics, logr)
	registrySvc.SetSnapshotTTL(cfg.Registry.CacheTTL)
	timetableSvc := service.NewTimetableService(backend.lessons, backend.slots, registrySvc, timetable.NewGrid(), validate, metrics, logr)
	bulkSvc := service.NewBulkScheduleService(timetableSvc, backend.templates, validate, metrics, logr, service.BulkScheduleConfig{
		MaxEntries: cfg.Bulk.MaxEntries,
		StatusTTL:  cfg.Bulk.StatusTTL,
	})
	exportSvc := service.NewExportService(timetableSvc, logr, nil, nil)
	onboardingSvc := service.NewOnboardingService(backend.school, registrySvc, validate, logr)
	verifier := service.NewTokenVerifier(service.TokenVerifierConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	queue := jobs.NewQueue("timetable-batches", bulkSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Bulk.Workers,
		BufferSize: cfg.Bulk.QueueSize,
		MaxRetries: -1,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	bulkSvc.SetDispatcher(queue)

	router := newRouter(cfg, logr, metrics, verifier, routeHandlers{
		registry:  handler.NewRegistryHandler(registrySvc),
		timetable: handler.NewTimetableHandler(timetableSvc, exportSvc),
		batches:   handler.NewBatchHandler(bulkSvc),
		school:    handler.NewSchoolHandler(onboardingSvc),
		health:    handler.NewHealthHandler(metrics, backend.checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.PersistenceDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*stores, error) {
	switch cfg.PersistenceDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &stores{
			registry:  repository.NewRegistryRepository(db),
			lessons:   repository.NewLessonRepository(db),
			slots:     repository.NewTimeSlotRepository(db),
			templates: repository.NewWeekTemplateRepository(db),
			school:    repository.NewSchoolRepository(db),
			checks:    map[string]handler.ReadinessCheck{"postgres": db.PingContext},
			close:     func() { _ = db.Close() },
		}, nil
	case config.DriverGraphQL:
		client := remote.NewClient(remote.Config{
			GraphQLURL:  cfg.Remote.GraphQLURL,
			RESTBaseURL: cfg.Remote.RESTBaseURL,
			APIToken:    cfg.Remote.APIToken,
			Timeout:     cfg.Remote.Timeout,
		}, metrics, logr)
		return &stores{
			registry:  client,
			lessons:   client,
			slots:     client,
			templates: client,
			school:    client,
			checks:    map[string]handler.ReadinessCheck{},
			close:     func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported persistence driver %q", cfg.PersistenceDriver)
	}
}
