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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/wellness-api/api/swagger"
	"github.com/noah-isme/wellness-api/internal/events"
	"github.com/noah-isme/wellness-api/internal/handler"
	"github.com/noah-isme/wellness-api/internal/kv"
	internalmiddleware "github.com/noah-isme/wellness-api/internal/middleware"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
	"github.com/noah-isme/wellness-api/internal/service"
	"github.com/noah-isme/wellness-api/pkg/cache"
	"github.com/noah-isme/wellness-api/pkg/config"
	"github.com/noah-isme/wellness-api/pkg/jobs"
	"github.com/noah-isme/wellness-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/wellness-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/wellness-api/pkg/middleware/requestid"
	"github.com/noah-isme/wellness-api/pkg/storage"
)

// @title Wellness Portal API
// @version 0.1.0
// @description Student wellness portal: moods, sessions, tasks, tutoring, referrals and support plans
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

	backing, closer, err := kv.Open(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closer.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	hub := events.NewHub(logr)
	hub.OnDrop = func(events.Event) { metrics.RecordDroppedEvent() }

	var rdb *redis.Client
	if cfg.Events.RedisForward || cfg.Dashboard.CacheEnabled {
		rdb, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable; dashboard cache and event forwarding disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close() //nolint:errcheck
		}
	}
	if rdb != nil && cfg.Events.RedisForward {
		relay := events.NewRedisRelay(rdb, cfg.Events.Channel, logr)
		relay.OnDrop = func(events.Event) { metrics.RecordDroppedEvent() }
		if err := relay.Attach(ctx, hub); err != nil {
			logr.Warn("event relay not attached", zap.Error(err))
		}
	}

	store := repository.NewDataStore(repository.Deps{
		KV:        backing,
		KeyPrefix: cfg.Storage.KeyPrefix,
		IDs:       repository.NewIDGenerator(cfg.Storage.IDStrategy),
		Events:    hub,
		Observer:  metrics,
		Logger:    logr,
	})

	markers := service.NewMarkerService(backing, cfg.Auth.SessionKeyPrefix, logr)
	auth, err := service.NewAuthService(models.DemoCredentials, markers, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "wellness-api",
		SimulatedDelay:    cfg.Auth.SimulatedDelay,
	})
	if err != nil {
		logr.Fatal("failed to init auth", zap.Error(err))
	}
	navigation, err := service.NewNavigationService()
	if err != nil {
		logr.Fatal("failed to load navigation", zap.Error(err))
	}

	var cacheRepo service.CacheRepository
	if rdb != nil {
		cacheRepo = repository.NewCacheRepository(rdb, logr)
	}
	dashboardCache := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	go dashboardCache.InvalidateOn(ctx, hub.Subscribe(nil, 64))
	dashboards := service.NewDashboardService(service.DashboardServiceParams{
		Store:  store,
		Users:  auth,
		Cache:  dashboardCache,
		Logger: logr,
	})

	files, err := storage.NewFileStore(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare report storage", zap.Error(err))
	}
	exporter := service.NewExportService(store, files, storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL}, logr)
	reports := service.NewReportService(service.ReportServiceParams{
		Jobs:     store.ReportJobs,
		Students: store,
		Exporter: exporter,
		Metrics:  metrics,
		Logger:   logr,
		Config:   service.ReportServiceConfig{ResultTTL: cfg.Reports.SignedURLTTL},
	})
	worker := service.NewReportWorker(store.ReportJobs, exporter, metrics, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			reports.MarkFailed(context.Background(), job.ID, err.Error())
		},
	})
	reports.SetQueue(queue)
	if cfg.Reports.Enabled {
		queue.Start(ctx)
		defer queue.Stop()
		if n := reports.RecoverPendingJobs(ctx); n > 0 {
			logr.Info("re-enqueued pending report jobs", zap.Int("count", n))
		}
		reports.StartCleanup(ctx)
	}

	h := handler.Handlers{
		Auth:       handler.NewAuthHandler(auth, cfg.Env == config.EnvProduction),
		Navigation: handler.NewNavigationHandler(navigation, auth),
		Students:   handler.NewStudentHandler(service.NewStudentService(store, logr)),
		Dashboard:  handler.NewDashboardHandler(dashboards),
		Moods:      handler.NewMoodHandler(service.NewMoodService(store.MoodEntries, nil, logr)),
		Sessions:   handler.NewSessionHandler(service.NewSessionService(store.Sessions, nil, logr)),
		Tasks:      handler.NewTaskHandler(service.NewTaskService(store.Tasks, nil, logr)),
		Tutoring:   handler.NewTutoringHandler(service.NewTutoringService(store.TutoringSessions, nil, logr)),
		Referrals:  handler.NewReferralHandler(service.NewReferralService(store.Referrals, nil, logr)),
		Psychopedagogy: handler.NewPsychopedagogyHandler(service.NewPsychopedagogyService(
			store.PsychopedagogyReferrals, store.PsychopedagogySessions, store.SupportPlans, nil, logr)),
		Messages: handler.NewMessageHandler(service.NewMessageService(store.Messages, nil, logr)),
		Reports:  handler.NewReportHandler(reports),
		Events:   handler.NewEventsHandler(hub, cfg.Events.HeartbeatInterval, logr),
		Metrics:  handler.NewMetricsHandler(metrics),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if _, _, err := backing.Get(c.Request.Context(), "ready-probe"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), h, handler.RouterDeps{
		Gate:         internalmiddleware.NewGate(auth, markers, logr),
		LoginLimiter: internalmiddleware.NewIPRateLimiter(cfg.Auth.LoginRatePerMin, cfg.Auth.LoginBurst),
		Logger:       logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
