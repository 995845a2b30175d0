package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashmath/internal/app"
	"github.com/abhisek/flashmath/internal/mastery"
	"github.com/abhisek/flashmath/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play <set-id>",
	Short: "Start a practice session on a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		modeFlag, _ := cmd.Flags().GetString("mode")
		durationFlag, _ := cmd.Flags().GetString("duration")
		mode, dur, err := parseSessionFlags(modeFlag, durationFlag)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := ctxOf(cmd)
		tr := d.trainer
		if err := tr.SetCurrentSet(args[0]); err != nil {
			return err
		}

		var level mastery.Level
		if levelFlag == "" {
			unlocked := tr.UnlockedLevels(ctx, args[0])
			level = unlocked[len(unlocked)-1]
		} else if level, err = mastery.ParseLevel(levelFlag); err != nil {
			return err
		}

		if _, err := tr.StartSession(ctx, mode, level, dur); err != nil {
			return err
		}

		return app.Run(app.Options{Env: d.env(ctx), Practice: true})
	},
}

// parseSessionFlags validates --mode and, for timed sessions, --duration.
// Master sessions get a zero duration.
func parseSessionFlags(modeFlag, durationFlag string) (session.Mode, time.Duration, error) {
	mode, err := session.ParseMode(modeFlag)
	if err != nil {
		return "", 0, err
	}
	if mode != session.ModeTimed {
		return mode, 0, nil
	}
	d, err := session.ParseDuration(durationFlag)
	if err != nil {
		return "", 0, err
	}
	return mode, d, nil
}

func init() {
	playCmd.Flags().String("mode", string(session.ModeMaster), "Session mode: master or timed")
	playCmd.Flags().String("level", "", "Mastery level (level1, level2, level3, ninja); defaults to the highest unlocked")
	playCmd.Flags().String("duration", "60", "Timed session length in seconds: 30, 60 or 90")
}
