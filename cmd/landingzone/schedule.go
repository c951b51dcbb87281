package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wirvsvirus/landingzone/orchestrator"
)

const flagCron = "cron"

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run a batch on a cron schedule until interrupted",
		RunE:  runScheduleCmd,
	}
	cmd.Flags().String(flagCron, "", "Cron spec, overrides the schedule of the config file")
	_ = viper.BindPFlag("schedule."+flagCron, cmd.Flags().Lookup(flagCron))
	return cmd
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	spec := viper.GetString("schedule." + flagCron)
	if spec == "" {
		spec = cfg.ScheduleSpec()
	}
	if spec == "" {
		return errors.New("no schedule configured, set schedule in the config file or pass --cron")
	}

	handler, err := cfg.NewHandler(cmd.Context())
	if err != nil {
		return err
	}
	defer closeHandler(handler)
	out := cmd.OutOrStdout()
	scheduler, err := orchestrator.NewScheduler(cmd.Context(), handler, spec,
		orchestrator.WithResultHook(func(r *orchestrator.BatchResult) {
			_ = writeBatchReport(out, r, outputTable)
		}))
	if err != nil {
		return err
	}
	scheduler.Run(cmd.Context())
	return nil
}
