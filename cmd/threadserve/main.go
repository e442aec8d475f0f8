package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arianaariaei/PyThreadServe/internal/accesslog"
	"github.com/arianaariaei/PyThreadServe/internal/admission"
	"github.com/arianaariaei/PyThreadServe/internal/files"
	"github.com/arianaariaei/PyThreadServe/internal/logger"
	"github.com/arianaariaei/PyThreadServe/internal/ratelimiter"
	"github.com/arianaariaei/PyThreadServe/internal/server"
	"github.com/arianaariaei/PyThreadServe/pkg/config"
	"github.com/arianaariaei/PyThreadServe/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flag overrides file and environment.
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger.SetLevel(cfg.Logging.Level)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure log output: %v", err)
	}

	// Cancelling this context initiates graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("ThreadServe - Threaded HTTP File Server")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	store, err := config.CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close content store: %v", err)
		}
	}()
	logger.Info("Content store initialized: type=%s", cfg.Content.Type)

	accessLog, err := accesslog.Open(cfg.AccessLog.Path)
	if err != nil {
		log.Fatalf("Failed to open access log: %v", err)
	}
	defer func() {
		if err := accessLog.Close(); err != nil {
			logger.Error("Failed to close access log: %v", err)
		}
	}()
	logger.Info("Access log: %s", cfg.AccessLog.Path)

	var httpMetrics metrics.HTTPMetrics
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		httpMetrics = metrics.NewHTTPMetrics()
		metricsServer = metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port})

		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
		logger.Info("Metrics endpoint on port %d", cfg.Metrics.Port)
	} else {
		httpMetrics = metrics.NewHTTPMetrics() // no-op when the registry is disabled
	}

	svc := files.NewService(store, cfg.Upload.Delay)
	limiter := admission.New(cfg.Admission.MaxConcurrentPosts)

	srv := server.New(server.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		Workers:    cfg.Server.Workers,
		QueueDepth: cfg.Server.QueueDepth,
	}, svc, limiter, accessLog, httpMetrics)

	if cfg.RateLimit.ConnectionsPerSecond > 0 {
		srv.SetConnLimiter(ratelimiter.New(cfg.RateLimit.ConnectionsPerSecond, cfg.RateLimit.Burst))
		logger.Info("Accept rate limit: %d conn/s (burst %d)",
			cfg.RateLimit.ConnectionsPerSecond, cfg.RateLimit.Burst)
	}

	logger.Info("Server configuration:")
	logger.Info("  Address: %s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("  Workers: %d", cfg.Server.Workers)
	logger.Info("  Queue depth: %d", cfg.Server.QueueDepth)
	logger.Info("  Max concurrent POSTs: %d", cfg.Admission.MaxConcurrentPosts)
	logger.Info("  Upload delay: %v", cfg.Upload.Delay)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on %s:%d. Press Ctrl+C to stop.", cfg.Server.Host, cfg.Server.Port)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}
}
