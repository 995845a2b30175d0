package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the current user's recent sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		recs := d.trainer.History(ctxOf(cmd), limit)
		if len(recs) == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-24s  %-6s  %-8s  %5s  %8s  %s\n",
			"Started", "Set", "Mode", "Level", "Time", "Accuracy", "Answers")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, r := range recs {
			mastered := ""
			if r.MasteredSetLevel != "" {
				mastered = "  ★ " + r.MasteredSetLevel.Name()
			}
			fmt.Fprintf(out, "%-16s  %-24s  %-6s  %-8s  %2d:%02d  %7.0f%%  %d fast, %d slow, %d wrong%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"), truncate(r.SetName, 24), r.Mode, r.Level.Name(),
				r.DurationSecs/60, r.DurationSecs%60, r.Accuracy()*100, r.Fast, r.Slow, r.Incorrect, mastered)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of sessions to show (0 for all)")
}
