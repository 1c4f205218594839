package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genre-schedule/internal/analysis"
	"genre-schedule/internal/api"
	"genre-schedule/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Starts the HTTP API:
  GET  /health             liveness check
  GET  /api/status         latest report and DB connection status
  POST /api/analyze-file   multipart CSV upload (field "file")
  GET  /api/report         latest report
  POST /api/db/connect     connect to Postgres
  GET  /api/db/tables      list public tables
  POST /api/db/analyze     analyze a table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context, out io.Writer) error {
	st := state.New()
	defer st.Close()

	handler := api.NewHandler(analysis.NewCSVService(a.logger), st, a.logger)
	handler.MaxUpload = a.cfg.Server.MaxUploadMB << 20

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, a.cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.logger.Info("starting HTTP API",
		zap.String("addr", srv.Addr),
		zap.Strings("cors_origins", a.cfg.Server.AllowedOrigins))
	fmt.Fprintf(out, "🚀 Serving on http://localhost%s\n", srv.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("shutting down HTTP API")
	return srv.Shutdown(shutdownCtx)
}
