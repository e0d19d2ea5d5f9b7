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

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/adapter/csvstore"
	"github.com/user/reality-watch/internal/delivery/http/handler"
	"github.com/user/reality-watch/internal/delivery/http/router"
	"github.com/user/reality-watch/internal/usecase"
	"github.com/user/reality-watch/pkg/config"
	"github.com/user/reality-watch/pkg/logger"
	"github.com/user/reality-watch/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(2)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	// --- Metrics ---
	m := metrics.New(nil)

	// --- Repositories ---
	store := csvstore.NewStore(cfg.OutputPath, cfg.LockTTL, log)

	// --- Use Cases ---
	listings := usecase.NewListingQuery(store)
	if n, err := listings.Count(context.Background()); err != nil {
		log.Warn("listings table is not readable yet", zap.String("path", store.Path()), zap.Error(err))
	} else {
		m.TableRows.Set(float64(n))
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(listings, log)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, m, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("table", store.Path()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
