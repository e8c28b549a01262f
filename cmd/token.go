package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/deskctl/internal/agent"
	"github.com/zjrosen/deskctl/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the shared auth token",
}

var tokenRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Generate a new auth token and save it to the config file",
	Long: `Generate a random 32-byte auth token and write it to auth_token in the
config file. Comments and other settings in the file are kept.

Restart the agent and the bot afterwards; both read auth_token at startup.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := newToken()
		if err != nil {
			return err
		}

		path := configPath
		if path == "" {
			path = userConfigPath()
		}
		if !fileExists(path) {
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
		}
		if err := config.SaveAuthToken(path, token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "New auth token %s written to %s\n", agent.MaskToken(token), path)
		return err
	},
}

func init() {
	tokenCmd.AddCommand(tokenRotateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// newToken returns 32 random bytes as hex.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
