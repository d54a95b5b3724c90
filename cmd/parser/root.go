package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/position-parser/internal/app"
	"github.com/samvad-hq/position-parser/internal/config"
	"github.com/samvad-hq/position-parser/internal/logger"
)

// errParseFailed marks a parse run whose terminal event was an error.
var errParseFailed = errors.New("parse finished with an error event")

type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime is what subcommands receive once the root hooks have loaded config and logging.
type runtime struct {
	cfg *config.Config
	log logger.Logger
}

// newRuntime is swapped in tests to avoid touching the process environment.
var newRuntime = func() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, log: log}, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "parser",
		Short:         "Extract a politician's policy positions from web pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Close()
		},
	}

	cmd.AddCommand(newServeCmd(), newParseCmd(), newClearCacheCmd())
	return cmd
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(*app.App, *runtime, io.Writer) error) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), rt.cfg, rt.log)
	if err != nil {
		rt.log.ErrorObj("failed to initialize parser", "error", err)
		return err
	}
	defer a.Close()
	return fn(a, rt, cmd.OutOrStdout())
}
