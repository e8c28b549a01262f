package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/deskctl/internal/coordinator"
	"github.com/zjrosen/deskctl/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent commands",
	Long: `Show the most recent commands the bot ran, newest first.

Example:
  deskctl history
  deskctl history --limit 50`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.History.Enabled {
			return fmt.Errorf("history is disabled (history.enabled: false)")
		}
		if historyLimit < 1 {
			return fmt.Errorf("--limit must be at least 1, got %d", historyLimit)
		}

		db, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer func() { _ = db.Close() }()

		entries, err := history.NewRepository(db).Recent(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		return renderHistory(cmd.OutOrStdout(), entries)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of commands to show")
	rootCmd.AddCommand(historyCmd)
}

var (
	historyHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	historyCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	historyBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#696969"))

	stateStyles = map[string]lipgloss.Style{
		coordinator.StateCompleted.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F")),
		coordinator.StateFailed.String():    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8787")),
		coordinator.StateCancelled.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("#FECA57")),
		coordinator.StateRunning.String():   lipgloss.NewStyle().Foreground(lipgloss.Color("#54A0FF")),
	}
)

func renderHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No commands recorded yet.")
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			e.SessionKey,
			e.Name,
			e.State,
			formatDuration(e),
			e.Error,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(historyBorderStyle).
		Headers("STARTED", "CHAT", "COMMAND", "STATE", "TOOK", "ERROR").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return historyHeaderStyle
			}
			if col == 3 {
				if s, ok := stateStyles[rows[row][col]]; ok {
					return s.Padding(0, 1)
				}
			}
			return historyCellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func formatDuration(e history.Entry) string {
	if e.EndedAt.IsZero() {
		return "-"
	}
	d := e.Duration()
	if d < time.Second {
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	return d.Round(100 * time.Millisecond).String()
}
