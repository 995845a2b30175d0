package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/problemset"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage problem sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := ctxOf(cmd)
		out := cmd.OutOrStdout()
		sets := d.trainer.Sets()

		fmt.Fprintf(out, "%-28s  %-28s  %5s  %s\n", "ID", "Name", "Cards", "Mastery")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, s := range sets {
			level, ok := d.trainer.SetMastery(ctx, s.ID)
			badge := mastery.Badge(level, ok)
			if badge == "" {
				badge = "-"
			}
			fmt.Fprintf(out, "%-28s  %-28s  %5d  %s\n", s.ID, truncate(s.Name, 28), len(s.Cards), badge)
		}
		fmt.Fprintf(out, "\n%d sets\n", len(sets))
		return nil
	},
}

var setsShowCmd = &cobra.Command{
	Use:   "show <set-id>",
	Short: "Show the cards of a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		set, err := d.trainer.Set(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", set.Name, set.ID)
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for _, c := range set.Cards {
			fmt.Fprintf(out, "%-24s  %-10s = %d\n", c.ID, c.Question, c.Answer)
		}
		return nil
	},
}

var setsAddCmd = &cobra.Command{
	Use:   "add <name> <problem>...",
	Short: "Create a set from expressions such as 3x5, 4 x 6 or 8*7",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		problems, err := problemset.ParseProblems(problemset.SplitProblems(strings.Join(args[1:], ",")))
		if err != nil {
			return err
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		set, err := d.trainer.CreateSet(ctxOf(cmd), args[0], problems)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) with %d cards\n", set.Name, set.ID, len(set.Cards))
		return nil
	},
}

var setsEditCmd = &cobra.Command{
	Use:   "edit <set-id> [problem]...",
	Short: "Rename a set or replace its problems",
	Long: "Rename a set with --name and/or replace its problems. Cards whose " +
		"question is kept retain their progress.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		set, err := d.trainer.Set(args[0])
		if err != nil {
			return err
		}
		if name == "" {
			name = set.Name
		}

		var problems []problemset.Problem
		if len(args) > 1 {
			problems, err = problemset.ParseProblems(problemset.SplitProblems(strings.Join(args[1:], ",")))
			if err != nil {
				return err
			}
		} else {
			for _, c := range set.Cards {
				problems = append(problems, problemset.Problem{Question: c.Question, Answer: c.Answer})
			}
		}

		updated, err := d.trainer.UpdateSet(ctxOf(cmd), set.ID, name, problems)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s): %d cards\n", updated.Name, updated.ID, len(updated.Cards))
		return nil
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <set-id>",
	Short: "Delete a set and everyone's progress on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.trainer.DeleteSet(ctxOf(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var setsResetCmd = &cobra.Command{
	Use:   "reset <set-id>",
	Short: "Reset the current user's progress and mastery on a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.trainer.ResetSetProgress(ctxOf(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset progress on %s for %s\n", args[0], d.trainer.CurrentUser())
		return nil
	},
}

var setsImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import sets from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			r = f
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		added, err := d.trainer.ImportSets(ctxOf(cmd), r)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range added {
			fmt.Fprintf(out, "Imported %s (%s): %d cards\n", s.Name, s.ID, len(s.Cards))
		}
		return nil
	},
}

var setsExportCmd = &cobra.Command{
	Use:   "export [set-id]...",
	Short: "Export sets as JSON (all sets when none are named)",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		w := cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return d.trainer.ExportSets(w, args...)
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	setsEditCmd.Flags().String("name", "", "New set name")
	setsExportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	setsCmd.AddCommand(setsListCmd, setsShowCmd, setsAddCmd, setsEditCmd,
		setsDeleteCmd, setsResetCmd, setsImportCmd, setsExportCmd)
}
