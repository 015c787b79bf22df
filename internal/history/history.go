// Package history keeps a log of evaluated inputs so clients can review what
// they asked the service to sum.
package history

import (
	"context"
	"sync"
	"time"
)

// Entry records one evaluation. Exactly one of Sum or Error is meaningful.
type Entry struct {
	Input     string    `bson:"input" json:"input"`
	Sum       int       `bson:"sum" json:"sum"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	APIKeyHP  string    `bson:"api_key_hp,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Recorder persists entries and returns the most recent ones, newest first.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Memory is a bounded in-process Recorder.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewMemory keeps at most max entries; older ones are dropped.
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = 1000
	}
	return &Memory{max: max}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.max; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
