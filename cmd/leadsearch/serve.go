package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/johnwards/leadsearch/internal/api"
	"github.com/johnwards/leadsearch/internal/api/admin"
	"github.com/johnwards/leadsearch/internal/api/records"
	"github.com/johnwards/leadsearch/internal/cache"
	"github.com/johnwards/leadsearch/internal/config"
	"github.com/johnwards/leadsearch/internal/converter"
	"github.com/johnwards/leadsearch/internal/database"
	"github.com/johnwards/leadsearch/internal/listing"
	"github.com/johnwards/leadsearch/internal/searchclient"
	"github.com/johnwards/leadsearch/internal/seed"
	"github.com/johnwards/leadsearch/internal/store"
	"github.com/johnwards/leadsearch/internal/transform"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	s := store.New(db)
	if cfg.Seed {
		if err := seed.Seed(ctx, s.Records); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	resultCache, closeCache, err := openCache(cfg.Cache, db)
	if err != nil {
		return err
	}
	defer closeCache()

	client := searchclient.New(searchclient.Config{
		BaseURL:        cfg.Search.BaseURL,
		APIKey:         cfg.Search.APIKey,
		Timeout:        cfg.Search.Timeout,
		MaxAttempts:    cfg.Search.MaxAttempts,
		InitialBackoff: cfg.Search.InitialBackoff,
		MaxBackoff:     cfg.Search.MaxBackoff,
		RateLimit:      cfg.Search.RateLimit,
		RateBurst:      cfg.Search.RateBurst,
	},
		searchclient.WithLogger(logger),
		searchclient.WithRegisterer(reg),
	)
	defer client.Close()

	var fallback listing.Fallback
	if cfg.Fallback.Enabled {
		fallback = s.Records
	}

	svc := listing.New(listing.Deps{
		Converter: converter.New(converter.Config{
			DefaultPageSize: cfg.Pagination.DefaultPageSize,
			MaxPageSize:     cfg.Pagination.MaxPageSize,
		}),
		Searcher:    client,
		Transformer: transform.New(transform.Options{Registerer: reg, Logger: logger}),
		Cache:       resultCache,
		CacheOpts:   cache.PageCacheOptions{TTL: cfg.Cache.TTL, Registerer: reg},
		Fallback:    fallback,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	records.RegisterRoutes(mux, svc, s.Records)
	admin.RegisterRoutes(mux, svc, s.Records)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Catch-all: return 404 in the API error format.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path),
			corrID,
		))
	})

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.Auth(cfg.AuthToken),
		api.JSONContentType(),
		api.Logging(),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting leadsearch server",
		"addr", cfg.Addr,
		"search", cfg.Search.BaseURL,
		"cache", cfg.Cache.Backend,
		"fallback", cfg.Fallback.Enabled,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// openCache builds the configured result cache backend. The sqlite backend
// shares the snapshot database.
func openCache(cfg config.CacheConfig, db *sql.DB) (cache.Store, func(), error) {
	switch cfg.Backend {
	case "none":
		return cache.NopStore{}, func() {}, nil
	case "memory":
		return cache.NewMemoryStore(), func() {}, nil
	case "sqlite":
		return cache.NewSQLiteStore(db), func() {}, nil
	case "redis":
		rs := cache.NewRedisStore(cache.RedisConfig{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: "leadsearch:",
		})
		return rs, func() { _ = rs.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
