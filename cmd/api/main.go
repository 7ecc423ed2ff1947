package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/examdocs/internal/adapters/http"
	"github.com/kirillkom/examdocs/internal/bootstrap"
	"github.com/kirillkom/examdocs/internal/config"
	"github.com/kirillkom/examdocs/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("examdocs-api", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.BatchUC,
		app.Catalog,
		app.Outcomes,
		app.Store,
		app.Reports,
		logger,
		httpadapter.RouterOptions{
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
		},
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      app.HTTPMetrics.Middleware("examdocs-api", router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", app.HTTPMetrics.Handler())
	metricsMux.Handle("/metrics/convert", app.ConvertMetrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", "error", err)
	}
}
