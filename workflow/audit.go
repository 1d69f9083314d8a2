package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is the immutable audit trail entry for one committed transition.
// Exactly one record is produced per commit and handed to the configured
// sink; the engine never mutates a record after emission.
type Record struct {
	ID        string `json:"id"`
	Sequence  uint64 `json:"sequence"`
	Workflow  string `json:"workflow"`
	EntityID  string `json:"entityId"`
	From      State  `json:"from"`
	To        State  `json:"to"`
	Actor     string `json:"actor"`
	Notes     string `json:"notes,omitempty"`
	AttemptID string `json:"attemptId"`

	AttemptedAt time.Time `json:"attemptedAt"`
	CommittedAt time.Time `json:"committedAt"`
}

// Sink receives audit records for committed transitions. Implementations
// own record durability (log store, message topic, database table). A sink
// failure does not roll back the state change; callers requiring atomicity
// must supply a shared transaction boundary around both.
type Sink interface {
	Record(ctx context.Context, record Record) error
}

// MemorySink is a thread-safe in-memory sink, useful for tests and for
// services that flush audit batches themselves.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)

	return nil
}

// Records returns a copy of all records received so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)

	return out
}

// Len returns the number of records received so far.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// SlogSink emits audit records as structured log lines.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink that logs records through the given logger.
// A nil logger falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogSink{
		logger: logger,
	}
}

func (s *SlogSink) Record(ctx context.Context, record Record) error {
	s.logger.InfoContext(ctx, "Transition committed",
		"audit_id", record.ID,
		"sequence", record.Sequence,
		"workflow", record.Workflow,
		"entity_id", record.EntityID,
		"from", record.From,
		"to", record.To,
		"actor", record.Actor,
		"notes", record.Notes,
		"attempt_id", record.AttemptID,
		"attempted_at", record.AttemptedAt,
		"committed_at", record.CommittedAt,
	)

	return nil
}

// MultiSink fans one record out to several sinks. All sinks receive the
// record; their errors are joined.
type MultiSink []Sink

func (s MultiSink) Record(ctx context.Context, record Record) error {
	var errs []error

	for _, sink := range s {
		err := sink.Record(ctx, record)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// newRecord assembles the audit record for one committed transition.
func newRecord(workflow string, sequence uint64, entity Entity, from, to State, tctx Context) Record {
	return Record{
		ID:          uuid.New().String(),
		Sequence:    sequence,
		Workflow:    workflow,
		EntityID:    entity.EntityID(),
		From:        from,
		To:          to,
		Actor:       tctx.Actor,
		Notes:       tctx.Notes,
		AttemptID:   tctx.AttemptID,
		AttemptedAt: tctx.AttemptedAt,
		CommittedAt: time.Now(),
	}
}
