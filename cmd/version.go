package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the deskctl version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "deskctl %s\n", version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
