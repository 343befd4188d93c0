package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/bassline/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "bassline %s (%s)\n", version.Version, version.Commit)
			return err
		},
	}
}
