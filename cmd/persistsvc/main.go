// Command persistsvc runs the chat-message persistence service: the
// job monitor and worker pool described in spec.md §4.7, wired
// together by internal/infrastructure/app. It is the Go equivalent of
// original_source/persistsvc's persistsvc.py/handler.py entrypoint
// pair.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iota-uz/persistsvc/internal/config"
	"github.com/iota-uz/persistsvc/internal/infrastructure/app"
	"github.com/iota-uz/persistsvc/internal/logging"

	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long serve waits for the worker pool and
// monitor to drain after a termination signal.
const shutdownTimeout = 30 * time.Second

func main() {
	root := &cobra.Command{
		Use:   "persistsvc",
		Short: "Chat-message persistence service",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the job monitor and worker pool until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.Start()
	log.WithField("service_env", cfg.ServiceEnv).Info("persistsvc started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining in-flight jobs")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.Shutdown(shutdownCtx)
}
