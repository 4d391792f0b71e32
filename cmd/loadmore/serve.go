package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/loadmore/pkg/logging"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve listing expansions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}

	cmd.Flags().StringVar(&a.cfg.ListenAddr, "addr", a.cfg.ListenAddr, "listen address")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	fetcher, err := a.newClient()
	if err != nil {
		return err
	}

	rdb := a.newRedis()
	if rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Info().Str("addr", a.cfg.RedisAddr).Msg("Connected to Redis")
	}

	srv := newServer(a.newScroller(fetcher, rdb), rdb, logging.NewLogger("server"))
	httpServer := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", a.cfg.ListenAddr).
			Str("user_agent", a.cfg.UserAgent).
			Msg("Starting loadmore server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
