package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/config"
	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/practice"
	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/store"
	"github.com/abhisek/flashmath/internal/trainer"
)

// deps is everything a command needs: configuration, logger, the open
// store and an initialized trainer.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	trainer *trainer.Trainer
}

// openDeps loads configuration and opens the store. TUI commands log to a
// file so the terminal stays free for drawing.
func openDeps(cmd *cobra.Command, tui bool) (*deps, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logPath := ""
	if tui && cfg.Log.Path == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		logPath = filepath.Join(dir, "flashmath.log")
		if err := store.EnsureDir(logPath); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	log, err := logger.New(cfg, logPath)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("path", dbPath))

	tr := trainer.New(trainer.Deps{
		KV:           st,
		Log:          log,
		SeedDefaults: cfg.Catalog.SeedDefaults,
	})
	tr.Init(ctxOf(cmd))

	if user, _ := cmd.Flags().GetString("user"); user != "" {
		if err := tr.ActAs(user); err != nil {
			st.Close()
			return nil, err
		}
	}
	return &deps{cfg: cfg, log: log, store: st, trainer: tr}, nil
}

func (d *deps) Close() {
	_ = d.log.Sync()
	if err := d.store.Close(); err != nil {
		d.log.Warn("close store", zap.Error(err))
	}
}

// env builds the screen environment for the TUI.
func (d *deps) env(ctx context.Context) screen.Env {
	return screen.Env{
		Ctx:     ctx,
		Trainer: d.trainer,
		Timing: practice.Timing{
			FeedbackCorrect:   d.cfg.Practice.FeedbackCorrect,
			FeedbackIncorrect: d.cfg.Practice.FeedbackIncorrect,
			CountdownTick:     d.cfg.Practice.CountdownTick,
		},
		Log: d.log.Named("tui"),
	}
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured db (which FLASHMATH_DB also sets), then the default path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
