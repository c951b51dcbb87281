package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/wirvsvirus/landingzone/api"
	"github.com/wirvsvirus/landingzone/athena"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API",
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings := cfg.Athena()
	queries, err := athena.NewFromConnection(cmd.Context(), settings.Connection,
		athena.WithDatabase(settings.Database),
		athena.WithOutputLocation(settings.OutputLocation),
		athena.WithWorkgroup(settings.Workgroup),
		athena.WithPollInterval(settings.PollInterval),
	)
	if err != nil {
		return err
	}

	server := api.New(queries)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ServeAddress())
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("api server shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
