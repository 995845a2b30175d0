package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashmath/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the current user's settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current user's settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		s := d.trainer.Settings(ctxOf(cmd))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "user:            %s\n", d.trainer.CurrentUser())
		fmt.Fprintf(out, "speed threshold: %s\n", time.Duration(s.SpeedThresholdMs)*time.Millisecond)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("threshold") {
			return fmt.Errorf("nothing to change: pass --threshold")
		}
		threshold, _ := cmd.Flags().GetDuration("threshold")

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		saved := d.trainer.SaveSettings(ctxOf(cmd), settings.Settings{
			SpeedThresholdMs: int(threshold.Milliseconds()),
		})
		fmt.Fprintf(cmd.OutOrStdout(), "speed threshold: %s\n", time.Duration(saved.SpeedThresholdMs)*time.Millisecond)
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().Duration("threshold", settings.DefaultSpeedThresholdMs*time.Millisecond,
		"Fast answer threshold, clamped to 1s-10s")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
