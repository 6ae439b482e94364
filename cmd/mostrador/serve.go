package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/unanue/mostrador"
	httpadapter "github.com/unanue/mostrador/internal/adapters/http"
	"github.com/unanue/mostrador/internal/config"
	"github.com/unanue/mostrador/internal/metrics"
	"github.com/unanue/mostrador/internal/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP intake server",
	Long:  `Starts the assistant as an HTTP service: one JSON endpoint per conversation turn, plus health and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}
		logger := newLogger(cfg)

		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)

		assistant, cleanup, err := buildAssistant(cfg, logger,
			mostrador.WithEngineOptions(
				runtime.WithObserver(collector),
				runtime.WithLifecycleHooks(collector.Hooks()),
			),
		)
		if err != nil {
			return err
		}
		defer cleanup()

		handler := httpadapter.NewHandler(assistant,
			httpadapter.WithLogger(logger),
			httpadapter.WithMetrics(registry),
		)

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting intake server", "addr", cfg.ListenAddr, "redis", cfg.UseRedis())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete, closing", "err", err)
				return srv.Close()
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides MOSTRADOR_ADDR)")
}
