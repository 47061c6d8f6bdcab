package audit

import (
	"context"

	"github.com/fruverhq/fruver-pos/internal/model"
)

// Event is one audit-trail entry. Actions use upper snake case
// (LOGIN, LOGIN_FAILED, SALE_COMMITTED, SALE_VOIDED, TILL_CLOSED, ...).
type Event struct {
	ActorID    *string                `json:"actor_id"`
	ActorEmail string                 `json:"actor_email"`
	Action     string                 `json:"action"`
	Entity     string                 `json:"entity"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	IP         string                 `json:"ip"`
}

// Sink records audit events fire-and-forget. Implementations must swallow and
// log their own failures: an audit hiccup never blocks the primary operation.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Repository persists and queries audit log rows.
type Repository interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	FindAll(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// NopSink discards events. Used in tests and as a safe default.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

type fanout struct {
	sinks []Sink
}

// NewFanout records every event on each sink in order.
func NewFanout(sinks ...Sink) Sink {
	return &fanout{sinks: sinks}
}

func (f *fanout) Record(ctx context.Context, e Event) {
	for _, s := range f.sinks {
		s.Record(ctx, e)
	}
}
