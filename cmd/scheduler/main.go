package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hey-show123/beauty-scheduler/internal/api"
	"github.com/hey-show123/beauty-scheduler/internal/assembler"
	"github.com/hey-show123/beauty-scheduler/internal/config"
	"github.com/hey-show123/beauty-scheduler/internal/events"
	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/optimizer"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
	"github.com/hey-show123/beauty-scheduler/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	configPath := os.Getenv("SCHEDULER_CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Logging)

	loc, err := cfg.BusinessDay.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid business day time zone")
	}
	cal, err := slots.New(cfg.BusinessDay.StartHour, cfg.BusinessDay.EndHour)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid business day")
	}

	db, err := store.Open(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()
	db.UseLocation(loc)

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	bus := events.NewBus()
	subscribeLogging(bus, &logger)

	var opt assembler.Optimizer
	if cfg.Optimizer.Mode == config.OptimizerModeRemote {
		client := optimizer.NewClient(cfg.Optimizer.BaseURL, cfg.Optimizer.APIKey, cfg.Optimizer.Timeout)
		client.UseLogger(&logger)
		client.UseRateLimit(cfg.Optimizer.RatePerSecond, cfg.Optimizer.RateBurst)
		if rdb != nil && cfg.CacheTTL() > 0 {
			client.UseRedisCache(rdb, cfg.CacheTTL())
			subscribeCacheInvalidation(bus, client, &logger)
		}
		opt = client
	} else {
		logger.Warn().Msg("optimizer in preview mode; schedules come from the greedy assigner")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewHTTPServer(cfg.Server, api.Deps{
		Store:     db,
		Optimizer: opt,
		Bus:       bus,
		Redis:     rdb,
		Calendar:  cal,
		Location:  loc,
		Logger:    &logger,
	})

	err = config.WatchBusinessDay(ctx, configPath, 30*time.Second, func(bd config.BusinessDayConfig) {
		next, err := slots.New(bd.StartHour, bd.EndHour)
		if err != nil {
			logger.Error().Err(err).Msg("ignoring business day update")
			return
		}
		nextLoc, err := bd.Location()
		if err != nil {
			logger.Error().Err(err).Msg("ignoring business day update")
			return
		}
		db.UseLocation(nextLoc)
		server.SetLocation(nextLoc)
		server.SetCalendar(next)
		logger.Info().
			Int("start_hour", bd.StartHour).
			Int("end_hour", bd.EndHour).
			Str("timezone", nextLoc.String()).
			Msg("business day updated")
	})
	if err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	go store.NewBackupService(db, cfg.Backup, &logger).Start(ctx)

	if cfg.Monitoring.HealthCheckPort != 0 {
		go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, server.Handler(), &logger)
	}
	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().Str("mode", cfg.Optimizer.Mode).Str("db", db.Path()).Msg("beauty scheduler started")
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("http server error")
	}
	logger.Info().Msg("beauty scheduler stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func subscribeLogging(bus *events.Bus, logger *zerolog.Logger) {
	log := func(e events.Event) error {
		logger.Debug().Str("event", e.Type).RawJSON("payload", e.Payload).Msg("event")
		return nil
	}
	for _, t := range []string{events.TypeScheduleSolved, events.TypeScheduleFailed, events.TypeStaffChanged, events.TypeBookingChanged} {
		bus.Subscribe(t, log)
	}
}

// subscribeCacheInvalidation drops cached solver results on every staff or
// booking change.
func subscribeCacheInvalidation(bus *events.Bus, client *optimizer.Client, logger *zerolog.Logger) {
	invalidate := func(e events.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.InvalidateCache(ctx); err != nil {
			logger.Warn().Err(err).Str("event", e.Type).Msg("optimizer cache invalidation failed")
			return err
		}
		return nil
	}
	bus.Subscribe(events.TypeStaffChanged, invalidate)
	bus.Subscribe(events.TypeBookingChanged, invalidate)
}

func startHealthServer(ctx context.Context, port int, handler http.Handler, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/healthz", handler)
	mux.Handle("/readyz", handler)
	serve(ctx, port, mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, port, mux, "metrics", logger)
}

func serve(ctx context.Context, port int, handler http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msgf("%s server error", name)
	}
}
