package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate"
	"github.com/sagarc03/pmsgate/config"
	"github.com/sagarc03/pmsgate/database"
	pmshttp "github.com/sagarc03/pmsgate/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the pmsgate HTTP server and serve the procedure routes until SIGINT or SIGTERM.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8000, "HTTP server port (env: PMSGATE_SERVER_PORT)")
	serveCmd.Flags().String("auth-header", "", "credential header name (default: Authorization, env: PMSGATE_AUTH_HEADER)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	// No connection is opened here; an unreachable store surfaces per request.
	// `pmsgate check` verifies reachability.

	invoker, err := pmsgate.NewInvoker(pool)
	if err != nil {
		return fmt.Errorf("create invoker: %w", err)
	}

	if cfg.Auth.BypassToken != "" {
		slog.Warn("auth bypass token is configured; requests carrying it skip every protected route")
	}

	handlerConfig := pmshttp.HandlerConfig{
		Auth:        cfg.Auth,
		CORS:        cfg.CORS,
		MaxBodySize: cfg.Server.MaxBodySize,
		Logger:      slog.Default(),
	}

	handler := pmshttp.NewHandler(&handlerConfig, invoker)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "auth_header", handlerConfig.Auth.Header, "max_conns", cfg.Database.MaxConns)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
