package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	transport "github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the launchpad HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides HTTP_PORT)")
}

func runServe(_ *cobra.Command, _ []string) error {
	if servePort > 0 {
		cfg.HTTPPort = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	h := transport.NewHandler(a.loop, a.directory, a.trace, a.mock)
	server := transport.NewServer(h, cfg.StaticDir)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("launchpad listening", "addr", addr, "static_dir", cfg.StaticDir)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down launchpad")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
