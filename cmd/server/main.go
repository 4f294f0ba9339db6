package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/quotedesk/internal/applog"
	"github.com/JonMunkholm/quotedesk/internal/config"
	"github.com/JonMunkholm/quotedesk/internal/i18n"
	"github.com/JonMunkholm/quotedesk/internal/logging"
	"github.com/JonMunkholm/quotedesk/internal/repository"
	"github.com/JonMunkholm/quotedesk/internal/search"
	"github.com/JonMunkholm/quotedesk/internal/tables"
	"github.com/JonMunkholm/quotedesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logFile, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.Logging.File, "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"locale", cfg.App.Locale,
		"page_list", cfg.Table.PageList,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// Build the search index from the current entities
	index, err := search.NewIndex()
	if err != nil {
		slog.Error("failed to create search index", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	if err := index.Rebuild(ctx, repository.DocumentLoader(pool)); err != nil {
		slog.Error("failed to build search index", "error", err)
		os.Exit(1)
	}

	translator, err := i18n.New(cfg.App.Locale)
	if err != nil {
		slog.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	deps := tables.Deps{
		DB:              pool,
		Translator:      translator,
		Search:          index,
		Logs:            applog.NewReader(cfg.Logging.File),
		PageList:        cfg.Table.PageList,
		MinMargin:       cfg.Table.MinMargin,
		SearchMinLength: cfg.Table.SearchMinLength,
	}

	// Log registered tables
	slog.Info("tables registered",
		"count", len(tables.Names()),
		"groups", len(tables.Groups()),
	)
	for _, group := range tables.Groups() {
		slog.Debug("table group", "group", group, "tables", len(tables.ByGroup(group)))
	}

	server := web.NewServer(deps, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
