package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvimport/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload form and import endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, db, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	server := web.NewServer(svc, web.Config{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		ImportTimeout:  cfg.Upload.Timeout,
		MaxBodyBytes:   cfg.Upload.MaxFileSize,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	if svc.Status().Active {
		slog.Info("waiting for import to complete")
		if err := svc.WaitForImports(shutdownCtx); err != nil {
			slog.Warn("import did not complete in time", "error", err)
		} else {
			slog.Info("import completed")
		}
	}

	slog.Info("server stopped")
	return nil
}
