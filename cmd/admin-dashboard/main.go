// cmd/admin-dashboard/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/config"
	"comj-admin/internal/common/database"
	"comj-admin/internal/common/logger"
	"comj-admin/internal/common/observability"
	"comj-admin/internal/dashboard"
	"comj-admin/internal/health"
	"comj-admin/internal/notify"
	"comj-admin/internal/review"
	"comj-admin/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting admin dashboard...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("admin-dashboard")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Comj API Client ---
	apiClient, err := comj.NewClient(&comj.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: config.GetDuration(cfg.API.Timeout),
	}, log)
	if err != nil {
		zapLog.Fatal("comj client failed", zap.Error(err))
	}
	apiClient.SetObservability(obs)
	zapLog.Info("Comj API client initialized", zap.String("baseUrl", apiClient.BaseURL()))

	// --- Init Session Service ---
	sessionService := session.NewService(&session.Config{
		TTL: config.GetDuration(cfg.Session.TTL),
	}, apiClient, redis, log)

	if err := sessionService.Initialize(ctx); err != nil {
		zapLog.Warn("no session restored, waiting for login", zap.Error(err))
	}

	// --- Init Decision Notifier ---
	notifier, err := notify.NewEmailNotifier(ctx, &notify.Config{
		Enabled:   cfg.Notifications.Email.Enabled,
		FromEmail: cfg.Notifications.Email.FromEmail,
		AdminList: cfg.Notifications.Email.AdminList,
		Region:    cfg.Notifications.AWS.Region,
	}, log)
	if err != nil {
		zapLog.Fatal("failed to create decision notifier", zap.Error(err))
	}

	// --- Init Dashboard Poller ---
	dashboardService := dashboard.NewService(&dashboard.Config{
		Interval: config.GetDuration(cfg.Polling.DashboardInterval),
		CacheTTL: config.GetDuration(cfg.Session.TTL),
	}, apiClient, redis, log)
	dashboardService.Start(ctx)
	zapLog.Info("Dashboard poller started",
		zap.Int("intervalMs", cfg.Polling.DashboardInterval),
	)

	// --- Init Health Monitor ---
	healthMonitor := health.NewMonitor(&health.Config{
		Interval:    config.GetDuration(cfg.Polling.HealthInterval),
		AppName:     cfg.App.Name,
		AppVersion:  cfg.App.Version,
		Environment: cfg.App.Environment,
	}, apiClient, log)
	healthMonitor.Start(ctx)
	zapLog.Info("Health monitor started",
		zap.Int("intervalMs", cfg.Polling.HealthInterval),
	)

	// --- Init Review Workflow ---
	// A decision refreshes the dashboard collections right away instead of
	// waiting for the next poll tick.
	reviewWorkflow := review.NewWorkflow(apiClient, notifier, func() {
		go dashboardService.Refresh(context.Background())
	}, log)

	zapLog.Info("All services initialized")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"local":  healthMonitor.Local(),
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":           "ready",
				"dashboardRunning": dashboardService.IsRunning(),
				"healthRunning":    healthMonitor.IsRunning(),
				"time":             time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping pollers...")

	dashboardService.Stop()
	healthMonitor.Stop()
	reviewWorkflow.Close()

	zapLog.Info("Admin dashboard stopped gracefully")
}
