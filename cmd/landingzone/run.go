package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wirvsvirus/landingzone/orchestrator"
)

const flagOutput = "output"

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dataset...]",
		Short: "Fetch, cleanse and land datasets once",
		Long:  "Runs one batch over the named datasets, or the configured ones when none are named.",
		RunE:  runRunCmd,
	}
	cmd.Flags().String(flagOutput, outputTable, "Report format: table or json")
	_ = viper.BindPFlag("run."+flagOutput, cmd.Flags().Lookup(flagOutput))
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	handler, err := cfg.NewHandler(cmd.Context())
	if err != nil {
		return err
	}
	defer closeHandler(handler)

	handler.Observers = append(handler.Observers, progressObserver(cmd.ErrOrStderr()))

	result, err := handler.Handle(cmd.Context(), orchestrator.Event{Datasets: args, Trigger: "cli"})
	if err != nil {
		return err
	}
	if err := writeBatchReport(cmd.OutOrStdout(), result, viper.GetString("run."+flagOutput)); err != nil {
		return err
	}
	if failed := len(result.Failed()); failed > 0 {
		exitCode = 2
		return fmt.Errorf("%d of %d datasets failed", failed, len(result.Outcomes))
	}
	return nil
}

func closeHandler(h *orchestrator.Handler) {
	if err := h.Close(); err != nil {
		slog.Warn("error closing landing zone store", "error", err)
	}
}
