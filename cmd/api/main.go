package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callcenter_backend/internal/adapters"
	"callcenter_backend/internal/adapters/storage"
	"callcenter_backend/internal/auth"
	"callcenter_backend/internal/email"
	"callcenter_backend/internal/events"
	"callcenter_backend/internal/exports"
	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/internal/http/router"
	"callcenter_backend/internal/leads"
	"callcenter_backend/internal/notification"
	"callcenter_backend/internal/scheduler"
	"callcenter_backend/internal/session"
	"callcenter_backend/internal/telephony"
	"callcenter_backend/internal/users"
	"callcenter_backend/migrations"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/db"
	"callcenter_backend/platform/logger"
	"callcenter_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Redis backs the per-login-session disposition log
	redisOpts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid redis URL", "error", err)
		panic("invalid redis URL: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	sessionLog := session.NewLog(redisClient, cfg)

	// Storage service for staged CSV imports (MinIO)
	var storageSvc *storage.MinIOService
	if err := withRetry(ctx, log, "storage service", 5, 2*time.Second, func() error {
		s, err := storage.NewMinIOService(ctx, cfg)
		if err != nil {
			return err
		}
		storageSvc = s
		return nil
	}); err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	log.Info("storage service initialized", "importBucket", cfg.GetMinIOImportBucket())

	// Task queue client for the import pipeline
	queueClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue client", "error", err)
		panic("failed to initialize task queue client: " + err.Error())
	}
	defer queueClient.Close()

	sender := email.NewSMTPSender(cfg)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, log)

	usersRepo := users.NewRepository(pool)
	userDirectory := adapters.NewUserDirectoryAdapter(usersRepo)

	leadsModule := leads.NewModule(leads.Deps{
		Pool:       pool,
		Users:      userDirectory,
		SessionLog: sessionLog,
		Verifier:   authModule.Service(),
		Objects:    storageSvc,
		Queue:      queueClient,
		Bus:        eventBus,
		Reporting:  cfg,
		Validator:  val,
		Log:        log,
	})

	usersModule := users.NewModule(pool, leadsModule.Repo(), eventBus, log)

	// Notification module subscribes to domain events (SSE fan-out + welcome mail)
	notificationModule := notification.New(eventBus, sender, cfg.GetEmailEnabled(), log)

	telephonyModule := telephony.NewModule(adapters.NewExtensionDirectoryAdapter(usersRepo), cfg, log)

	exportsModule := exports.NewModule(leadsModule.Repo(), log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       pool,
		EventBus:     eventBus,
		SessionGuard: auth.SessionGuard(authModule.Service()),
		Modules: []apphttp.Module{
			authModule,
			usersModule,
			leadsModule,
			notificationModule,
			telephonyModule,
			exportsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, draining in-flight requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
