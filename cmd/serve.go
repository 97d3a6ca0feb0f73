package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/config"
	api "github.com/rogerio-castellano/inventory-app/internal/http"
	"github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-app/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-app/internal/logger"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Log.Level)
	log.Info("Configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("❌ Could not open store", "backend", cfg.Store.Backend, "error", err)
		return err
	}
	defer closeStore()

	if cfg.SeedDemo {
		n, err := repo.Seed(ctx, store, repo.DemoProducts())
		if err != nil {
			return err
		}
		log.Info("Demo products loaded", "count", n)
	}

	handlers.SetLogger(log)
	handlers.SetProductRepo(store)
	handlers.SetTruthyUpdates(cfg.Compat.TruthyUpdates)

	g, gctx := errgroup.WithContext(ctx)

	opts := []api.Option{api.WithLogger(log)}
	if cfg.RateLimit.RPS > 0 {
		limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		opts = append(opts, api.WithRateLimiter(limiter))
		g.Go(func() error {
			limiter.StartVisitorCleanupLoop(gctx)
			return nil
		})
	}

	srv := newHTTPServer(cfg, api.NewRouter(opts...))

	g.Go(func() error {
		log.Info("✅ Server running", "addr", srv.Addr, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down", "timeout", cfg.Shutdown.Timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("❌ Server stopped with error", "error", err)
		return err
	}
	log.Info("Server stopped")
	return nil
}

func newHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
