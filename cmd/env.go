package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edugen/edugen/internal/app"
	"github.com/edugen/edugen/internal/auth"
	"github.com/edugen/edugen/internal/cache"
	"github.com/edugen/edugen/internal/config"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/tutor"
)

const redisDialTimeout = 3 * time.Second

// errNotSignedIn is returned by commands that need an account.
var errNotSignedIn = errors.New("not signed in: run `edugen login` first")

// env is everything a command needs, built from flags and configuration.
type env struct {
	cfg      config.Config
	log      *logger.Logger
	store    *store.Store
	session  *auth.Session
	accounts *auth.Authenticator
	cache    cache.Cache
	svc      tutor.Service
	demo     bool
}

// newEnv loads configuration, opens the store and assembles the service
// stack: client, retry, cache, attempt history, logging.
func newEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logPath := ""
	if cfg.Log.Enabled {
		logPath = cfg.Log.File
	}
	log, err := logger.New(logger.Config{Mode: cfg.Log.Mode, Level: cfg.Log.Level, Path: logPath})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{cfg: cfg, log: log, store: st}
	e.demo, _ = cmd.Flags().GetBool("demo")
	events := st.EventRepo()

	if e.demo {
		log.Info("demo mode")
		e.svc = tutor.WithLogging(tutor.WithHistory(tutor.NewDemoService(), events, log), log)
		return e, nil
	}

	e.session = auth.NewSession(st.CredentialRepo(), log)
	client := tutor.NewClient(tutor.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, e.session, log)
	e.accounts = auth.NewAuthenticator(client, e.session, log)
	e.cache = openCache(ctx, cfg.Cache, log)

	var svc tutor.Service = client
	svc = tutor.WithRetry(svc, tutor.RetryConfig{
		MaxAttempts: cfg.API.Retry.MaxAttempts,
		InitialWait: cfg.API.Retry.InitialWait,
		MaxWait:     cfg.API.Retry.MaxWait,
		Multiplier:  cfg.API.Retry.Multiplier,
	})
	svc = tutor.WithCache(svc, e.cache, tutor.CacheConfig{
		ScopeFunc:  e.cacheScope,
		ResultTTL:  cfg.Cache.ResultTTL,
		SummaryTTL: cfg.Cache.SummaryTTL,
	})
	svc = tutor.WithHistory(svc, events, log)
	e.svc = tutor.WithLogging(svc, log)
	return e, nil
}

// openCache dials Redis when configured and falls back to memory.
func openCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.NewMemory()
	}
	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	r, err := cache.DialRedis(dialCtx, cfg.RedisURL, cfg.Prefix)
	if err != nil {
		log.Warn("redis unavailable, using memory cache", "error", err)
		fmt.Fprintln(os.Stderr, "Cache server unavailable, continuing without it.")
		return cache.NewMemory()
	}
	return r
}

// cacheScope keys cached reads by the signed-in user.
func (e *env) cacheScope() string {
	id, err := e.session.Identity(context.Background())
	if err != nil || id == nil || id.UserID == "" {
		return "anon"
	}
	return "user:" + id.UserID
}

// requireSignIn fails fast when a backend command has no session.
func (e *env) requireSignIn(ctx context.Context) error {
	if e.demo || e.session.Authenticated(ctx) {
		return nil
	}
	return errNotSignedIn
}

// deps builds the TUI dependencies.
func (e *env) deps() app.Deps {
	d := app.Deps{
		Service:   e.svc,
		Events:    e.store.EventRepo(),
		Log:       e.log,
		TimeLimit: e.cfg.Assessment.TimeLimit,
	}
	if e.accounts != nil {
		d.Accounts = e.accounts
	}
	return d
}

func (e *env) Close() {
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.log.Warn("close cache", "error", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}

// resolveDBPath returns the database path using the --db flag (highest
// priority), then the configured path, then EDUGEN_DB or the XDG default.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
