package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/okian/spadl/internal/adapters/http/api"
	service "github.com/okian/spadl/internal/app"
	"github.com/okian/spadl/internal/config"
	"github.com/okian/spadl/internal/domain/registry"
	"github.com/okian/spadl/pkg/logger"
	"github.com/okian/spadl/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP server",
		Long: "Run the conversion HTTP server. Settings come from defaults, the YAML file\n" +
			"named by SPADL_CONFIG and SPADL_* environment variables, in that order.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return err
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	log.Info(ctx, "configuration loaded",
		logger.String("log_level", logger.Level().String()),
		logger.Any("config", cfg),
	)

	metrics.Configure(metrics.WithConstLabels(map[string]string{"schema_version": registry.Version}))

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return errors.Wrap(err, "start service")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service shutdown failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return errors.Wrap(err, "listen")
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService maps the configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMaxGames(cfg.MaxGames),
		service.WithPitch(cfg.FieldLength, cfg.FieldWidth),
		service.WithDefaultBodyPart(cfg.DefaultBodyPart),
		service.WithDribbles(cfg.AddDribbles),
	)
}

func newHandler(cfg *config.Config, svc *service.Service, log logger.Logger) http.Handler {
	srv := api.NewServer(svc, svc,
		api.WithLogger(log.Named("api")),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	return srv.Router()
}

// startServiceMetricsUpdater publishes queue and store gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if n, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(n)
	}
	if n, ok := stats["storedGames"].(int); ok {
		metrics.UpdateStoredGames(n)
	}
}
