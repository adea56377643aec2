package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/zendalabs/zenda/internal/api"
	"github.com/zendalabs/zenda/internal/auth"
	"github.com/zendalabs/zenda/internal/cache"
	"github.com/zendalabs/zenda/internal/config"
	"github.com/zendalabs/zenda/internal/intake"
	"github.com/zendalabs/zenda/internal/ledger"
	"github.com/zendalabs/zenda/internal/ledger/pgstore"
	"github.com/zendalabs/zenda/internal/ledger/sqlstore"
	"github.com/zendalabs/zenda/internal/review"
	"github.com/zendalabs/zenda/internal/scorecard"
	"github.com/zendalabs/zenda/internal/scoring"
	"github.com/zendalabs/zenda/internal/session"
)

func main() {
	if err := runFn(os.Args[1:], os.Getenv, listenAndServe, newServer); err != nil {
		fatalf("server error: %v", err)
	}
}

var runFn = run
var fatalf = log.Fatalf

type envFn func(string) string
type listenFn func(*http.Server) error
type serverFactory func(cfg config.Config) (*http.Server, func(), error)

func run(args []string, getenv envFn, listen listenFn, factory serverFactory) error {
	fs := flag.NewFlagSet("zenda-gateway", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to zenda config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = getenv("ZENDA_CONFIG_PATH")
	}

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	cfg.ListenAddr = firstNonEmpty(getenv("ZENDA_LISTEN_ADDR"), cfg.ListenAddr, ":8080")
	cfg.DB.Driver = firstNonEmpty(getenv("ZENDA_DB_DRIVER"), cfg.DB.Driver)
	cfg.DB.DSN = firstNonEmpty(getenv("ZENDA_DB_DSN"), cfg.DB.DSN)
	cfg.Redis.Addr = firstNonEmpty(getenv("ZENDA_REDIS_ADDR"), cfg.Redis.Addr)
	cfg.ScorecardPath = firstNonEmpty(getenv("ZENDA_SCORECARD_PATH"), cfg.ScorecardPath)
	cfg.Auth.Token = firstNonEmpty(getenv("ZENDA_API_TOKEN"), cfg.Auth.Token)
	if err := cfg.Validate(); err != nil {
		return err
	}

	server, cleanup, err := factory(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Printf("zenda-gateway listening on %s", cfg.ListenAddr)
	if err := listen(server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newServer(cfg config.Config) (*http.Server, func(), error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "zenda-gateway").Logger()

	loaded, err := loadScorecard(cfg.ScorecardPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load scorecard: %w", err)
	}
	logger.Info().
		Str("scorecard_id", loaded.Scorecard.ScorecardID).
		Str("scorecard_hash", loaded.Hash).
		Msg("scorecard loaded")

	store, closeStore, err := openStore(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	var decisionCache cache.Cache
	var closeCache func()
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr)
		decisionCache = rc
		closeCache = func() { _ = rc.Close() }
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache enabled")
	} else {
		decisionCache = cache.NewMemoryCache()
	}

	scoreService := &api.ScoreService{
		Engine:        scoring.NewEngine(loaded.Scorecard),
		Scorecard:     loaded,
		Store:         store,
		Cache:         decisionCache,
		CacheTTL:      cfg.Redis.TTL.Std(),
		ReviewChannel: cfg.Review.Channel,
		Logger:        logger,
	}

	h := &api.Handler{
		Auth:     &auth.TokenAuthenticator{Token: cfg.Auth.Token},
		Score:    scoreService,
		Sessions: session.NewStore(),
		Intake:   intake.Pipeline{StepDelay: cfg.Intake.StepDelay.Std()},
		Logger:   logger,
	}

	handler := api.NewRouter(h)
	var limiter *api.RateLimiter
	if cfg.RateLimit.Capacity > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillWindow.Std())
		handler = api.WithRateLimit(limiter, handler)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go review.RunWorker(workerCtx, store, review.LogNotifier{Logger: logger}, cfg.Review.PollInterval.Std())

	cleanup := func() {
		stopWorker()
		if limiter != nil {
			limiter.Stop()
		}
		if closeCache != nil {
			closeCache()
		}
		if closeStore != nil {
			closeStore()
		}
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server, cleanup, nil
}

func loadScorecard(path string) (scorecard.Loaded, error) {
	if path == "" {
		return scorecard.LoadDefault()
	}
	return scorecard.Load(path)
}

func openStore(cfg config.DBConfig) (ledger.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		store, err := sqlstore.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := pgstore.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return ledger.NewInMemoryStore(), nil, nil
	}
}

func listenAndServe(server *http.Server) error {
	return server.ListenAndServe()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
