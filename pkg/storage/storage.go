// Package storage archives routed layouts under stable IDs.
//
// Backends:
//   - [MemoryStore]: process-local, for tests and the default server
//   - [FileStore]: one JSON file per layout, for the CLI
//   - [MongoStore]: MongoDB collection for shared deployments
//
// IDs are random UUIDs assigned on [Store.Save]. Lookups of unknown IDs
// return an error with code LAYOUT_NOT_FOUND.
package storage

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/render"
)

// ErrNotFound is returned when a layout does not exist.
var ErrNotFound = stderrors.New("layout not found")

// DefaultListLimit caps [Store.List] when the limit is not positive.
const DefaultListLimit = 50

// Record is an archived layout.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	PlanHash  string        `json:"plan_hash,omitempty" bson:"plan_hash,omitempty"`
	Layout    render.Layout `json:"layout" bson:"layout"`
}

// Summary describes a record without its geometry.
type Summary struct {
	ID         string    `json:"id"`
	Technology string    `json:"technology"`
	Cell       string    `json:"cell"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r Record) Summary() Summary {
	return Summary{ID: r.ID, Technology: r.Layout.Technology, Cell: r.Layout.Cell, CreatedAt: r.CreatedAt}
}

// Store is the interface for layout archives.
type Store interface {
	// Save archives l under a new ID. The returned record's layout carries
	// the ID too.
	Save(ctx context.Context, l render.Layout, planHash string) (Record, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (Record, error)

	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a record. Deleting an unknown ID is an error.
	Delete(ctx context.Context, id string) error

	Close(ctx context.Context) error
}

// NewID returns a fresh layout ID.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id has the form produced by [NewID].
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func newRecord(l render.Layout, planHash string, now time.Time) Record {
	id := NewID()
	l.ID = id
	return Record{ID: id, CreatedAt: now.UTC(), PlanHash: planHash, Layout: l}
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeLayoutNotFound, ErrNotFound, "layout %q", id)
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}
