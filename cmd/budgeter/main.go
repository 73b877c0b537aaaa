package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "budgeter/api/v1"
	"budgeter/internal/account"
	"budgeter/internal/audit"
	"budgeter/internal/auth"
	"budgeter/internal/ban"
	"budgeter/internal/bootstrap"
	"budgeter/internal/cache"
	"budgeter/internal/config"
	"budgeter/internal/db"
	"budgeter/internal/logging"
	"budgeter/internal/ratelimit"
	"budgeter/internal/reqlog"
	"budgeter/internal/store"
	"budgeter/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	logger, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("Failed to initialize logging: %v", err)
	}
	log := logrus.NewEntry(logger)
	log.Info("✓ Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize database
	gdb, err := db.Open(db.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(gdb)

	if cfg.Migrate {
		if err := db.Migrate(gdb, log); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// 4. Initialize Redis (optional)
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.Open(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, using in-process rate limiting")
			rdb = nil
		} else {
			defer cache.Close(rdb)
		}
	}

	// 5. Wire services
	users := store.NewUserStore(gdb)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute)
	gate := ban.NewGate(users, log)
	accounts := account.NewService(users, gate, tokens, audit.NewRecorder(gdb, log), log)

	if _, err := bootstrap.EnsureAdmin(ctx, users, bootstrap.AdminSeed{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}, log); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	var notifier ban.Notifier
	var socket http.Handler
	if cfg.WS.Enabled {
		hub := ws.NewHub(tokens, ws.SessionCheckFunc(func(ctx context.Context, userID int) (ban.BanStatus, error) {
			_, status, err := gate.CheckSession(ctx, userID)
			return status, err
		}), log)
		hub.Start()
		defer hub.Close()
		notifier = hub
		socket = hub.Handler()
	}
	bans := ban.NewController(users, notifier, log)

	window := time.Duration(cfg.RateLimit.LoginWindowSec) * time.Second
	var limiter ratelimit.Limiter
	if cfg.RateLimit.LoginMax > 0 {
		if rdb != nil {
			limiter = ratelimit.NewRedisLimiter(rdb, "budgeter:login", cfg.RateLimit.LoginMax, window, log)
		} else {
			mem := ratelimit.NewMemoryLimiter(cfg.RateLimit.LoginMax, window)
			defer mem.Stop()
			limiter = mem
		}
	}

	sink := reqlog.NewSink(cfg.RequestLog.Size)

	// 6. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), reqlog.Middleware(sink, log.WithField("component", "http")))

	// Setup API v1 routes
	v1.SetupRouter(r, &v1.Dependencies{
		Users:        users,
		Accounts:     accounts,
		Gate:         gate,
		Bans:         bans,
		Tokens:       tokens,
		LoginLimiter: limiter,
		RequestLogs:  sink,
		Socket:       socket,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Graceful shutdown failed")
		}
	}()

	log.Infof("✓ Server starting on %s", cfg.HTTPAddr)

	// Start server
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Info("Server stopped")
}

// loadConfig reads CONFIG_FILE as INI when set, otherwise the environment
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFromINI(path)
	}
	return config.Load()
}
