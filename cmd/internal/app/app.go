// Package app wires the articles identity service runtime: config, logging,
// storage, the route table with its access guard, and HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"articles/cmd/identity"
	"articles/cmd/internal/auth"
	authapi "articles/cmd/internal/auth/api"
	"articles/cmd/internal/auth/google"
	"articles/cmd/internal/auth/token"
	"articles/cmd/internal/users"
)

// App is the service runtime: it owns HTTP wiring and the composition root
// that hands every component its collaborators exactly once.
type App struct {
	cfg Config
	log Logger

	store     identity.Store
	pool      *pgxpool.Pool
	dbEnabled bool

	metrics *Metrics
	tokens  *token.Manager

	authH  *authapi.Handler
	usersH *users.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	tokens, err := token.NewManager(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("app: ARTICLES_JWT_SECRET must be set: %w", err)
	}

	store, pool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	svc := auth.NewService(log, store, tokens)

	var provider authapi.IdentityProvider
	gcfg := google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}
	if gcfg.Enabled() {
		p, err := google.NewProvider(gcfg)
		if err != nil {
			return nil, err
		}
		provider = p
	} else {
		log.Info("auth.google.disabled")
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		pool:      pool,
		dbEnabled: dbEnabled,
		metrics:   NewMetrics(),
		tokens:    tokens,
		authH:     authapi.NewHandler(log, svc, provider, cfg.MaxBodyBytes),
		usersH:    users.NewHandler(log, store, cfg.MaxBodyBytes),
	}, nil
}

// Handler builds the full HTTP pipeline: the route table with the access
// guard, the operational endpoints, and request logging outermost.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerRoutes(mux, a.log, a.tokens, a.metrics, a.Routes())
	registerOps(mux, a.log, a.cfg, a.pool, a.dbEnabled, a.metrics)
	return WithRequestLogging(mux, a.log)
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Postgres-backed persistence and the in-memory dev
// store. The app owns the pool lifecycle.
func newStore(ctx context.Context, cfg Config, log Logger) (identity.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	st, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return st, pool, true, nil
}
