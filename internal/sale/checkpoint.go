package sale

import (
	"context"
	"fmt"
)

// Workflow checkpoints where a diagnostic build may force a failure. They sit
// immediately after the two side effects whose compensation paths need
// end-to-end exercise.
const (
	PointAfterSaleCreate = "after-sale-create"
	PointAfterTillApply  = "after-till-apply"
)

// Checkpoint is invoked by the commit workflow at the points above. The
// production implementation is a no-op; a diagnostic implementation may
// return an error to force the full compensation path.
type Checkpoint interface {
	Fire(ctx context.Context, point string) error
}

// NopCheckpoint never fires. This is the production wiring.
type NopCheckpoint struct{}

func (NopCheckpoint) Fire(context.Context, string) error { return nil }

// ForcedFaultError marks a checkpoint-triggered failure so callers can tell
// it apart from a genuine store error.
type ForcedFaultError struct {
	Point string
}

func (e *ForcedFaultError) Error() string {
	return fmt.Sprintf("forced fault at checkpoint %s", e.Point)
}

type faultKey struct{}

// WithFaults arms the given checkpoints on the context. Only the
// ContextCheckpoint reads them; under the production NopCheckpoint armed
// faults are inert.
func WithFaults(ctx context.Context, points ...string) context.Context {
	armed := map[string]bool{}
	for _, p := range points {
		armed[p] = true
	}
	return context.WithValue(ctx, faultKey{}, armed)
}

// ContextCheckpoint fails at any checkpoint armed on the context. Wired only
// when fault injection is explicitly enabled outside production.
type ContextCheckpoint struct{}

func (ContextCheckpoint) Fire(ctx context.Context, point string) error {
	armed, _ := ctx.Value(faultKey{}).(map[string]bool)
	if armed[point] {
		return &ForcedFaultError{Point: point}
	}
	return nil
}
