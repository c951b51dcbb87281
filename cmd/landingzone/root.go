package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wirvsvirus/landingzone/config"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/logging"
)

const flagConfig = "config"

var exitCode int

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.AppName + " COMMAND [args]",
		Short:         "Lands public health open data as CSV in the data lake",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Initialize(constants.AppName)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "Path of the HCL config file")
	_ = viper.BindPFlag(flagConfig, rootCmd.PersistentFlags().Lookup(flagConfig))
	_ = viper.BindEnv(flagConfig, constants.EnvConfigFile)

	rootCmd.AddCommand(
		runCmd(),
		scheduleCmd(),
		serveCmd(),
		datasetsCmd(),
	)
	return rootCmd
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString(flagConfig))
}
