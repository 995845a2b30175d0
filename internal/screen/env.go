package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/practice"
	"github.com/abhisek/flashmath/internal/trainer"
)

// Env carries what screens need to reach the trainer.
type Env struct {
	Ctx     context.Context
	Trainer *trainer.Trainer
	Timing  practice.Timing
	Log     *zap.Logger
}
