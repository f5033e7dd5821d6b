package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Load(nil)
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			settings.Port = port
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
		slog.SetDefault(logger)
		if err := settings.Check(logger); err != nil {
			return err
		}
		gin.SetMode(settings.GinMode)

		app, err := server.New(settings,
			server.NewLLMClient(settings, logger),
			server.NewNotifier(settings, logger),
			logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go pruneSessions(ctx, app, settings.SessionTTL, logger)

		srv := &http.Server{
			Addr:              ":" + settings.Port,
			Handler:           app.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		app.Wait()
		return nil
	},
}

// pruneSessions drops idle wizard sessions until ctx is done.
func pruneSessions(ctx context.Context, app *server.App, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.Intake.Prune(ttl); n > 0 {
				logger.Info("pruned idle intake sessions", "count", n, "remaining", app.Intake.Len())
			}
		}
	}
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")
	RootCmd.AddCommand(serveCmd)
}
