// Package store persists solved plans so the API can serve them by ID.
//
// Two backends implement [PlanStore]: [MemoryStore] for the CLI and tests,
// and [MongoStore] for deployments. Records are immutable once saved.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// Listing limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Record is a saved plan.
type Record struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Plan      *splitter.Plan `json:"plan"`
}

// PlanStore saves and retrieves plan records.
// Implementations must be safe for concurrent use.
type PlanStore interface {
	// Save assigns an ID and creation time to p and stores it.
	Save(ctx context.Context, p *splitter.Plan) (*Record, error)

	// Get returns the record with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close(ctx context.Context) error
}

// newRecord stamps a copy of p with a fresh ID.
func newRecord(p *splitter.Plan, now time.Time) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		Plan:      p.Clone(),
	}
}

// ClampLimit maps a requested list size onto [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
}
