package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quidome/photostamp/pkg/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage watermark configuration files",
	}

	configCmd.AddCommand(newConfigInitCmd(opts))
	configCmd.AddCommand(newConfigShowCmd(opts))

	return configCmd
}

func newConfigInitCmd(opts *options) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := args[0]

			cfg, err := effectiveConfig(cmd, opts)
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			if err := config.Save(path, cfg); err != nil {
				return err
			}
			cmd.Printf("Configuration written to %s\n", path)
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return initCmd
}

func newConfigShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := effectiveConfig(cmd, opts)
			if err != nil {
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Print(string(data))
			return nil
		},
	}
}
