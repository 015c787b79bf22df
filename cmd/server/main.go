package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/cache"
	"github.com/example/sumapi/internal/config"
	"github.com/example/sumapi/internal/handlers"
	"github.com/example/sumapi/internal/history"
	apihttp "github.com/example/sumapi/internal/http"
	"github.com/example/sumapi/internal/logging"
	"github.com/example/sumapi/internal/rate"
	"github.com/example/sumapi/pkg/strcalc"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// backends are the stores selected by configuration.
type backends struct {
	keys    interface {
		auth.APIKeyStore
		auth.APIKeyCreator
	}
	history history.Recorder
	close   func()
}

// openBackends connects to Mongo when MONGO_URI is set and falls back to
// in-process stores otherwise.
func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI is empty; using in-memory api keys and history", zap.Int("seeded_keys", len(cfg.APIKeys)))
		return &backends{
			keys:    auth.NewMemoryAPIKeyStore(cfg.APIKeys...),
			history: history.NewMemory(1000),
			close:   func() {},
		}, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	disconnect := func() { _ = client.Disconnect(context.Background()) }
	db := client.Database(cfg.MongoDB)
	keys, err := auth.NewMongoAPIKeyStore(ctx, db, cfg.KeyCacheTTL)
	if err != nil {
		disconnect()
		return nil, fmt.Errorf("api key store init: %w", err)
	}
	closeFn := func() {
		keys.Stop()
		disconnect()
	}
	for _, k := range cfg.APIKeys {
		if err := keys.Create(ctx, k, true, "env"); err != nil {
			closeFn()
			return nil, fmt.Errorf("seed api key: %w", err)
		}
	}
	rec, err := history.NewMongoRecorder(ctx, db)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("history init: %w", err)
	}
	return &backends{keys: keys, history: rec, close: closeFn}, nil
}

func buildHandler(cfg config.Config, be *backends, lm *rate.LimiterMap, results *cache.Cache, logger *zap.Logger) http.Handler {
	sum := handlers.NewSumHandler(handlers.SumDeps{
		Calc:           strcalc.Calculator{Ceiling: cfg.SumCeiling},
		Cache:          results,
		History:        be.history,
		Logger:         logger,
		Timeout:        cfg.SumTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
		MaxInputs:      cfg.MaxInputs,
	})
	routes := apihttp.Routes{
		Sum:     sum,
		History: handlers.NewHistoryHandler(be.history, cfg.HistoryLimit, logger),
		Signup:  handlers.NewSignupHandler(be.keys, logger),
	}
	if cfg.AdminToken != "" {
		routes.Admin = handlers.NewAdminHandler(be.keys, cfg.AdminToken, logger)
	}
	return apihttp.NewRouter(routes, lm, be.keys, logger)
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	be, err := openBackends(ctx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer be.close()

	lm := rate.NewLimiterMap(cfg.RateLimitRPM, cfg.RateLimitRPM, 5*time.Minute)
	defer lm.Stop()

	results := cache.New(cfg.CacheTTL)
	results.StartReaper(cfg.CacheTTL)
	defer results.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildHandler(cfg, be, lm, results, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}
	logger.Info("shutting down")
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	return srv.Shutdown(shCtx)
}
