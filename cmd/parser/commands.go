package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/position-parser/internal/app"
	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/pipeline"
)

const readHeaderTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App, rt *runtime, _ io.Writer) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return serve(ctx, a, rt)
			})
		},
	}
}

// newHTTPServer leaves WriteTimeout unset: parse responses are long-lived event streams.
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func serve(ctx context.Context, a *app.App, rt *runtime) error {
	srv := newHTTPServer(rt.cfg.Addr(), a.Handler())

	errCh := make(chan error, 1)
	go func() {
		rt.log.InfoObj("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.log.InfoObj("http server shutting down", "shutdown_timeout", rt.cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <url>...",
		Short: "Run one pipeline and print every event as a JSON line",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := pipeline.ValidateURLs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App, _ *runtime, out io.Writer) error {
				return parse(cmd.Context(), a, urls, out)
			})
		},
	}
}

func parse(ctx context.Context, a *app.App, urls []string, out io.Writer) error {
	enc := json.NewEncoder(out)
	var failed bool
	var writeErr error
	a.Pipeline().Run(ctx, urls, func(evt domain.Event) {
		if evt.Type == domain.EventError {
			failed = true
		}
		if writeErr == nil {
			writeErr = enc.Encode(evt)
		}
	})
	if writeErr != nil {
		return fmt.Errorf("write event: %w", writeErr)
	}
	if failed {
		return errParseFailed
	}
	return nil
}

func newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove every cached analysis result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App, _ *runtime, out io.Writer) error {
				_, err := fmt.Fprintf(out, "Cleared %d cached responses\n", a.Cache().Clear())
				return err
			})
		},
	}
}
