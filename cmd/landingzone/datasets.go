package main

import (
	"github.com/spf13/cobra"
	"github.com/wirvsvirus/landingzone/registry"
)

func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the registered datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDatasets(cmd.OutOrStdout(), registry.Descriptors())
		},
	}
}
