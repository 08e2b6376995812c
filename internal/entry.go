// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mentorlink/forum/internal/api"
	"github.com/mentorlink/forum/internal/auth"
	"github.com/mentorlink/forum/internal/forum"
	"github.com/mentorlink/forum/internal/mcpserver"
	"github.com/mentorlink/forum/internal/repository"
	"github.com/mentorlink/forum/internal/store"
	"github.com/mentorlink/forum/internal/store/mongo"
	"github.com/mentorlink/forum/internal/store/sqlite"
	"github.com/mentorlink/forum/internal/usercache"
	"github.com/mentorlink/forum/internal/userdir"
)

// backend is the document store selected by StoreConfig.Driver.
type backend interface {
	store.QuestionStore
	store.UserStore
	store.UserWriter
	api.Pinger
	Close() error
}

// runtime holds the wired components shared by the HTTP and MCP entry points.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	backend backend
	users   store.UserStore
	dir     *userdir.Directory
	svc     *forum.Service
	redis   *redis.Client
}

func (rt *runtime) close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if err := rt.backend.Close(); err != nil {
		rt.logger.Warn("store close failed", slog.String("error", err.Error()))
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func openBackend(ctx context.Context, cfg StoreConfig) (backend, error) {
	switch cfg.Driver {
	case StoreDriverMongo:
		s, err := mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return s, nil
	default:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	}
}

func newAuthenticator(cfg AuthConfig) auth.Authenticator {
	if cfg.Mode == AuthModeHeader {
		return auth.NewHeader(cfg.Header)
	}
	return auth.NewJWT(cfg.Secret)
}

// bootstrap opens the store, the optional user cache and user directory, and
// builds the forum service.
func bootstrap(ctx context.Context, app *application, logOut io.Writer) (*runtime, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(logOut, cfg.App.LogLevel)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("user_cache", cfg.Cache.Redis.Enabled()),
		slog.String("users_dir", cfg.Users.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	b, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, backend: b, users: b}

	var writer store.UserWriter = b
	if cfg.Cache.Redis.Enabled() {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		cache := usercache.New(rt.redis, b, cfg.Cache.Redis.TTL)
		rt.users = cache
		writer = cache
	}

	if cfg.Users.Dir != "" {
		dir, err := userdir.New(cfg.Users.Dir, writer, logger)
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("init users dir: %w", err)
		}
		if n, err := dir.Sync(ctx); err != nil {
			logger.Warn("initial user sync failed", slog.String("error", err.Error()))
		} else {
			logger.Info("users imported", slog.Int("count", n))
		}
		rt.dir = dir
	}

	var svcOpts []forum.Option
	if app.now != nil {
		svcOpts = append(svcOpts, forum.WithClock(app.now))
	}
	rt.svc = forum.NewService(repository.NewQuestionRepository(b), rt.users, svcOpts...)
	return rt, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := bootstrap(ctx, app, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, logger := rt.cfg, rt.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORS(cfg.App.CORS.AllowedOrigins, cfg.App.CORS.MaxAge))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", api.Live)
	r.Get("/health/ready", api.Ready(rt.backend))

	r.Mount("/api/forum", api.NewRouter(rt.svc, newAuthenticator(cfg.Auth)))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if rt.dir != nil && cfg.Users.Watch {
		g.Go(func() error {
			err := rt.dir.Watch(gCtx, func(kind, path string) {
				logger.Debug("users dir changed", slog.String("kind", kind), slog.String("path", path))
			})
			if err != nil {
				logger.Warn("users watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the read-only MCP tools on stdio. Logs go to stderr since
// stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := bootstrap(ctx, app, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
