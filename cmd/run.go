package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/flashmath/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	skip, _ := cmd.Flags().GetBool("no-welcome")
	return app.Run(app.Options{
		Env:         d.env(ctxOf(cmd)),
		SkipWelcome: skip,
	})
}
