package usecase

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/logger"
	"go.uber.org/zap"
)

type compensation struct {
	label string
	undo  func(ctx context.Context) error
}

// compensator keeps the effects applied so far and unwinds them in reverse on
// failure. Every undo is best-effort and runs exactly once; an undo failure is
// logged with its step and never masks the error that triggered the unwind.
type compensator struct {
	steps  []compensation
	logger logger.Logger
}

func newCompensator(log logger.Logger) *compensator {
	return &compensator{logger: log}
}

func (c *compensator) push(label string, undo func(ctx context.Context) error) {
	c.steps = append(c.steps, compensation{label: label, undo: undo})
}

func (c *compensator) unwind(ctx context.Context) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(ctx); err != nil {
			c.logger.Error("compensation step failed",
				zap.String("step", step.label),
				zap.Error(err),
			)
		}
	}
	c.steps = nil
}
