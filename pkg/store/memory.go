package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // insertion order, oldest first
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Save stores a copy of p.
func (s *MemoryStore) Save(ctx context.Context, p *splitter.Plan) (*Record, error) {
	if err := p.Verify(); err != nil {
		return nil, err
	}
	rec := newRecord(p, s.now())

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	s.mu.Unlock()

	return copyRecord(rec), nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return copyRecord(rec), nil
}

// List returns the newest records first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Record, error) {
	limit = ClampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyRecord(s.records[s.order[i]]))
	}
	return out, nil
}

// Close does nothing.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func copyRecord(r *Record) *Record {
	c := *r
	c.Plan = r.Plan.Clone()
	return &c
}

var _ PlanStore = (*MemoryStore)(nil)
