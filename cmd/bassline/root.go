package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydlexius/bassline/internal/config"
)

const defaultConfigPath = "config.yaml"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "bassline",
		Short:         "Discover South African artists and serve them over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"Configuration file path (default $"+config.EnvPath+" or "+defaultConfigPath+")")

	load := func() (*config.Config, string, error) {
		path := strings.TrimSpace(configFlag)
		if path == "" {
			path = config.PathFromEnv(defaultConfigPath)
		}
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	rootCmd.AddCommand(newServeCommand(load))
	rootCmd.AddCommand(newDiscoverCommand(load))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// configLoader resolves and loads the configuration for a subcommand.
type configLoader func() (*config.Config, string, error)
