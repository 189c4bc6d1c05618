// @title           Realtime Service API
// @version         1.0
// @description     Tenant-isolated presence, broadcast routing and notification dispatch.

// @host      localhost:8004
// @BasePath  /api/realtime

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"realtime-service/internal/client"
	"realtime-service/internal/config"
	"realtime-service/internal/database"
	"realtime-service/internal/events"
	"realtime-service/internal/job"
	"realtime-service/internal/metrics"
	"realtime-service/internal/middleware"
	"realtime-service/internal/presence"
	"realtime-service/internal/realtime"
	"realtime-service/internal/repository"
	"realtime-service/internal/router"
	"realtime-service/internal/service"
	"realtime-service/internal/tenancy"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting realtime service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("guard_mode", cfg.Presence.GuardMode))

	tenancy.Configure(tenancy.ParseMode(cfg.Presence.GuardMode), logger)

	m := metrics.NewWithLogger(logger)

	// Database. Startup survives a down database: the pod reports not
	// ready and retries in the background.
	dbConfig := database.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("failed to connect to database on startup, will retry in background", zap.Error(err))
		// Repositories resolve the connection per call, so the data
		// path recovers as soon as the retry loop publishes the handle.
		database.NewAsync(dbConfig, 5*time.Second, func(db *gorm.DB) {
			if err := database.AutoMigrate(db); err != nil {
				logger.Warn("failed to run database migrations", zap.Error(err))
			}
			database.RegisterMetricsCallbacks(db, m)
		})
	} else {
		database.SetDB(db)
		if err := database.AutoMigrate(db); err != nil {
			logger.Warn("failed to run database migrations", zap.Error(err))
		}
		database.RegisterMetricsCallbacks(db, m)
	}

	redisClient := database.NewRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, logger)

	// Realtime core
	tracker := presence.NewTracker(presence.NewMemoryStore(), logger)
	hub := realtime.NewHub(logger, m)
	emitter := events.NewEmitter(hub, redisClient, logger)

	// Repositories and services
	notificationRepo := repository.NewNotificationRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)

	notificationService := service.NewNotificationService(
		notificationRepo, preferenceRepo, redisClient,
		time.Duration(cfg.Notification.UnreadCacheTTLSeconds)*time.Second, logger, m)
	dispatcher := service.NewDispatcher(
		userRepo, preferenceRepo, notificationRepo, emitter, notificationService, logger, m)
	chatAccess := service.NewChatAccessService(chatRepo, logger)

	rtRouter := realtime.NewRouter(hub, tracker, chatAccess, emitter, logger, m)

	// Stale-session sweeper: the backstop for sockets that die without
	// a close frame. Forced-offline transitions broadcast like any
	// other presence change.
	sweeper := presence.NewSweeper(tracker,
		time.Duration(cfg.Presence.SweepIntervalSeconds)*time.Second,
		time.Duration(cfg.Presence.StaleThresholdSeconds)*time.Second,
		logger)
	sweeper.OnOffline(func(rec presence.Record) {
		m.PresenceForcedOffline()
		emitter.EmitPresenceChanged(rec.TenantID, rec.ToPayload())
	})
	sweeper.Start()
	defer sweeper.Stop()

	statsCollector := metrics.NewRealtimeStatsCollector(hub, m, logger)
	statsCollector.Start()
	defer statsCollector.Stop()

	var dbStatsDone chan struct{}
	if db != nil {
		dbStatsDone = database.StartDBStatsCollector(db, m)
		defer close(dbStatsDone)
	}

	// Token validation: auth service when configured, local HMAC
	// parsing otherwise.
	var validator middleware.TokenValidator
	if cfg.Auth.ServiceURL != "" {
		validator = client.NewAuthClient(cfg.Auth.ServiceURL, 5*time.Second, logger)
		logger.Info("token validation via auth service", zap.String("url", cfg.Auth.ServiceURL))
	} else {
		validator = middleware.NewLocalValidator(cfg.Auth.SecretKey)
		logger.Info("token validation via local secret")
	}

	// Periodic jobs. The deadline sweep waits out the initial delay so
	// a crash-looping pod does not spam assignees on every restart.
	deadlineJob := job.NewDeadlineJob(taskRepo, dispatcher,
		time.Duration(cfg.Notification.DeadlineLookaheadHours)*time.Hour, logger, m)
	cleanupJob := job.NewCleanupJob(notificationService, cfg.Notification.RetentionDays, logger)

	scheduler := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
	))
	if _, err := scheduler.AddJob(cfg.Notification.DeadlineSchedule, deadlineJob); err != nil {
		logger.Error("failed to schedule deadline sweep", zap.Error(err))
	}
	if _, err := scheduler.AddJob("@daily", cleanupJob); err != nil {
		logger.Error("failed to schedule notification cleanup", zap.Error(err))
	}
	initialDelay := time.Duration(cfg.Notification.DeadlineInitialDelaySeconds) * time.Second
	startupSweep := time.AfterFunc(initialDelay, deadlineJob.Run)
	defer startupSweep.Stop()
	scheduler.Start()

	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Metrics:        m,
		Env:            cfg.Server.Env,
		BasePath:       cfg.Server.BasePath,
		InternalAPIKey: cfg.Internal.APIKey,
		Validator:      validator,
		Hub:            hub,
		Realtime:       rtRouter,
		Tracker:        tracker,
		Emitter:        emitter,
		Dispatcher:     dispatcher,
		Notifications:  notificationService,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("realtime service started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
