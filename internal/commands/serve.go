package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/api"
	"github.com/cleared-dev/icsimport/internal/ics"
	"github.com/cleared-dev/icsimport/internal/importer"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop signal.
const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statement preview API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
			cfg, logger, err := opts.setup(cwd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			parserOpts, err := cfg.Parser.Options()
			if err != nil {
				return err
			}
			registry := importer.DefaultRegistry(append(parserOpts, ics.WithLogger(logger))...)
			server := api.NewServer(registry, logger, api.Config{BodyLimit: cfg.Server.MaxUploadBytes()})

			return serve(cmd.Context(), server, addr, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// serve runs server until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, server *api.Server, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}
