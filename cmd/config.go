package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/deskctl/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write the default config, with comments, to --config or
~/.config/deskctl/config.yaml. An existing file is left alone unless --force
is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = userConfigPath()
		}
		if fileExists(path) && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if !fileExists(path) {
			path += " (not found, using defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
