package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"zippybox-server/config"
	"zippybox-server/internal/api"
	"zippybox-server/internal/catalog"
	"zippybox-server/internal/database"
	"zippybox-server/internal/logger"
	"zippybox-server/internal/metrics"
	"zippybox-server/internal/paths"
	"zippybox-server/internal/storage"
	"zippybox-server/internal/upload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "zippybox",
		Short:        "ZippyBox upload server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to Config.json (default: search executable dir and working dir)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configPath)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg, log)
		},
	})
	return root
}

func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log, nil)
	slog.SetDefault(log)
	return cfg, log, nil
}

func migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	drv, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer drv.Close()

	if err := database.Migrate(ctx, drv); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("catalog schema is up to date", "driver", cfg.Database.Driver)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Initialize database
	drv, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer drv.Close()

	// Run migrations
	if err := database.Migrate(ctx, drv); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	observer, err := metrics.NewPrometheus(metrics.DefaultNamespace, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	ingestor := upload.New(store, catalog.New(drv),
		upload.WithPaths(paths.Builder{Namespace: cfg.Upload.Namespace}),
		upload.WithLimits(upload.LimitsFrom(cfg.Upload)),
		upload.WithObserver(observer),
		upload.WithLogger(log),
	)
	router := api.SetupRouter(cfg, api.NewFileHandler(ingestor, log), prometheus.DefaultGatherer)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Backend, "database", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "filesystem":
		fs, err := storage.NewFilesystem(cfg.Storage.Dir, cfg.Storage.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("init filesystem storage: %w", err)
		}
		return fs, nil
	default:
		m, err := storage.NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		return m, nil
	}
}
