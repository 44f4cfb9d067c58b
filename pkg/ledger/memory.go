package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Ledger, mostly useful in tests.
type Memory struct {
	mu      sync.Mutex
	records []*Record
	next    int64
	now     func() time.Time
}

// NewMemory creates an empty in-memory ledger, optionally seeded with records.
// Seeded records keep their sequence numbers; new records continue after the
// highest one.
func NewMemory(seed ...*Record) *Memory {
	m := &Memory{now: time.Now}
	for _, r := range seed {
		cp := *r
		m.records = append(m.records, &cp)
		if cp.Sequence > m.next {
			m.next = cp.Sequence
		}
	}

	return m
}

// WithClock overrides the clock used for AppliedAt.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) EnsureSchema(context.Context) error {
	return nil
}

func (m *Memory) Append(_ context.Context, fileName, tag, contentHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	y, mo, d := m.now().Date()
	m.records = append(m.records, &Record{
		Sequence:    m.next,
		FileName:    fileName,
		Tag:         tag,
		ContentHash: contentHash,
		AppliedAt:   time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
	})

	return nil
}

func (m *Memory) ListByTag(_ context.Context, tag string) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Record
	for _, r := range m.records {
		if r.Tag == tag {
			cp := *r
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (m *Memory) ListAll(context.Context) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		out = append(out, &cp)
	}

	return out, nil
}
