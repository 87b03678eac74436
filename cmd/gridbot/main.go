package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/bpx-grid/internal/api"
	"github.com/rickgao/bpx-grid/internal/auth"
	"github.com/rickgao/bpx-grid/internal/config"
	"github.com/rickgao/bpx-grid/internal/journal"
	"github.com/rickgao/bpx-grid/internal/metrics"
	"github.com/rickgao/bpx-grid/internal/strategy"
	"github.com/rickgao/bpx-grid/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/gridbot.local.yaml", "path to config file")
	flag.Parse()

	// Credentials usually arrive via ${VAR} expansion; a local .env is optional.
	_ = godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gridbot",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"symbol", cfg.Strategy.Symbol,
		"api_url", cfg.API.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client, err := buildClient(cfg, logger)
	if err != nil {
		logger.Error("failed to build API client", "error", err)
		os.Exit(1)
	}

	// Optional fill journal
	var rec strategy.Recorder
	if cfg.Journal.Enabled() {
		j, err := journal.Connect(ctx, cfg.Journal, cfg.Instance.ID, logger)
		if err != nil {
			logger.Error("failed to connect journal", "error", err)
			os.Exit(1)
		}
		defer j.Close()
		rec = j
	}

	params, err := strategy.ParamsFromConfig(cfg.Strategy)
	if err != nil {
		logger.Error("invalid strategy parameters", "error", err)
		os.Exit(1)
	}

	startMetricsServer(ctx, cfg.Metrics, logger)

	factory := func() (strategy.Runner, error) {
		return strategy.NewDualOrder(params, client, client, rec, logger), nil
	}
	sup := strategy.NewSupervisor(factory, 5*time.Second, logger)

	logger.Info("gridbot running",
		"instance_id", cfg.Instance.ID,
		"symbol", params.Symbol,
		"interval", params.Interval,
	)

	if err := sup.Run(ctx); err != nil {
		logger.Error("supervisor stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("gridbot stopped")
}

// buildClient assembles the authenticated API client from config.
func buildClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	authOpts := []auth.Option{}
	if cfg.API.WindowMS > 0 {
		authOpts = append(authOpts, auth.WithWindow(cfg.API.WindowMS))
	}
	creds, err := auth.NewCredentials(cfg.API.Key, cfg.API.Secret, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	opts := []api.ClientOption{api.WithLogger(logger)}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	if cfg.API.Proxy != "" {
		proxy, err := url.Parse(cfg.API.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		opts = append(opts, api.WithProxy(proxy))
	}

	return api.NewClient(cfg.API.BaseURL, creds, opts...), nil
}

// startMetricsServer serves Prometheus metrics and a liveness endpoint.
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"healthy"}`)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("starting metrics server", "port", cfg.Port, "path", cfg.Path)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()
}
