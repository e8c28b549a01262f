package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/deskctl/internal/config"
	"github.com/zjrosen/deskctl/internal/log"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	// configPath is the file the config was read from, or where
	// 'config init' and 'token rotate' write when none was found.
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "deskctl",
	Short: "Control your PC from a Telegram chat",
	Long: `deskctl pairs a Telegram bot with a small HTTP agent on your PC.

Run 'deskctl agent' on the PC and 'deskctl bot' anywhere that can reach it.
Each chat runs one command at a time: a new command cancels the previous one.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig(viper.GetViper())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.deskctl/config.yaml, then ~/.config/deskctl/config.yaml)")
}

// userConfigPath is the per-user config location.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".deskctl", "config.yaml")
	}
	return filepath.Join(home, ".config", "deskctl", "config.yaml")
}

// loadConfig reads the config file, if any, into cfg.
// Lookup order:
//  1. --config
//  2. .deskctl/config.yaml (current directory)
//  3. ~/.config/deskctl/config.yaml
func loadConfig(v *viper.Viper) error {
	config.SetDefaults(v)

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(filepath.Join(".deskctl", "config.yaml")):
		v.SetConfigFile(filepath.Join(".deskctl", "config.yaml"))
	default:
		v.SetConfigFile(userConfigPath())
	}

	configPath = v.ConfigFileUsed()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config %s: %w", configPath, err)
		}
		// Defaults and DESKCTL_* variables still apply.
	}

	decoded, err := config.Decode(v)
	if err != nil {
		return err
	}
	decoded.ExpandPaths()
	cfg = decoded
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setupLogging points the logger at the configured file, or at w when no
// file is set. The returned func closes the file.
func setupLogging(l config.LogConfig, w io.Writer) (func(), error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	cleanup := func() {}
	if l.File != "" {
		if cleanup, err = log.Init(l.File); err != nil {
			return nil, fmt.Errorf("initializing logging: %w", err)
		}
	} else {
		log.InitWriter(w)
	}
	log.SetMinLevel(level)
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
