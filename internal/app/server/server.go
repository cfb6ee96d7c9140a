package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/google/bundletool-sub016/internal/api"
	"github.com/google/bundletool-sub016/internal/catalog"
	"github.com/google/bundletool-sub016/internal/config"
	"github.com/google/bundletool-sub016/internal/listener"
	"github.com/google/bundletool-sub016/internal/storage"
)

func Run(cfg config.Config) {
	config.SetupLogging(cfg.Server.LogLevel)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog + refresh source
	handler, closeFn, err := build(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init catalog")
	}
	defer closeFn()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("source", cfg.Catalog.Source).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal
	waitForSignal()
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = srv.Shutdown(shCtx)
}

// build loads the catalog from the configured source, starts the matching
// refresh goroutine and returns the HTTP handler. The returned func releases
// the source.
func build(ctx context.Context, cfg config.Config) (http.Handler, func(), error) {
	cat := catalog.New()
	closeFn := func() {}

	switch cfg.Catalog.Source {
	case config.SourceFiles:
		fs := storage.NewFileStore(cfg.Catalog.Dir)
		if err := cat.Refresh(ctx, fs); err != nil {
			return nil, closeFn, fmt.Errorf("initial catalog load: %w", err)
		}
		go func() {
			if err := listener.WatchDir(ctx, fs, cat, cfg.Debounce()); err != nil {
				log.Error().Err(err).Str("dir", fs.Dir()).Msg("manifest watcher stopped")
			}
		}()

	default:
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, closeFn, fmt.Errorf("init storage: %w", err)
		}
		closeFn = store.Close
		if err := cat.Refresh(ctx, store); err != nil {
			store.Close()
			return nil, func() {}, fmt.Errorf("initial catalog load: %w", err)
		}
		// Listener (LISTEN/NOTIFY)
		go listener.ListenAndRefresh(ctx, store, cat, cfg.Listener.Channel, cfg.Backoff())
	}

	h := api.NewMatchHandler(cat, api.Defaults{
		StrictConsistency:              cfg.Matcher.StrictConsistency,
		IncludeInstallTimeAssetModules: cfg.Matcher.IncludeInstallTimeAssetModules,
	})
	return api.Router(h), closeFn, nil
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
