package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashmath/internal/engine"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/trainer"
)

var statsCmd = &cobra.Command{
	Use:   "stats [set-id]",
	Short: "Show learning statistics for every set or one set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := ctxOf(cmd)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Statistics for %s\n\n", d.trainer.CurrentUser())

		if len(args) == 1 {
			o, err := d.trainer.Overview(ctx, args[0])
			if err != nil {
				return err
			}
			printSetCards(out, o)
			return nil
		}

		fmt.Fprintf(out, "%-28s  %9s  %8s  %8s  %s\n", "Set", "Learned", "Attempts", "Accuracy", "Mastery")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, s := range d.trainer.Sets() {
			o, err := d.trainer.Overview(ctx, s.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-28s  %4d/%-4d  %8d  %7.0f%%  %s\n",
				truncate(o.Set.Name, 28), o.Learned, len(o.Cards), o.Attempts, o.Accuracy*100, badgeOr(o, "-"))
		}
		return nil
	},
}

func badgeOr(o trainer.Overview, fallback string) string {
	if b := mastery.Badge(o.Mastery, o.HasMastery); b != "" {
		return b
	}
	return fallback
}

func printSetCards(out io.Writer, o trainer.Overview) {
	fmt.Fprintf(out, "%s: %d/%d learned, %s\n\n", o.Set.Name, o.Learned, len(o.Cards), badgeOr(o, "not mastered"))
	fmt.Fprintf(out, "%-10s  %6s  %6s  %5s  %5s  %5s  %s\n", "Card", "Weight", "Tries", "Fast", "Slow", "Wrong", "Mastered at")
	fmt.Fprintln(out, strings.Repeat("─", 72))
	for _, c := range o.Cards {
		levels := make([]string, 0, len(c.MasteredAtLevels))
		for _, l := range c.MasteredAtLevels {
			levels = append(levels, l.Name())
		}
		mark := " "
		if engine.Learned(c) {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %-8s  %6d  %6d  %5d  %5d  %5d  %s\n", mark, c.Question, c.Weight,
			c.Stats.TotalAttempts, c.Stats.FastAttempts, c.Stats.SlowAttempts, c.Stats.IncorrectAttempts,
			strings.Join(levels, ", "))
	}
}
