// Package store holds rendered heatmaps keyed by image, user and cohort.
//
// The heatmap pipeline writes through a LayerCache after rendering. Two
// implementations are provided: MemoryCache for a single process and
// SQLiteCache for a cache that survives restarts.
//
// A cache miss is reported as found == false with a nil error. Errors are
// reserved for storage failures.
package store

import (
	"context"
	"time"
)

// Key identifies one cached heatmap. An empty UserID is the composite entry
// for the whole cohort; an empty Cohort means all users.
type Key struct {
	ImageID string `json:"image_id"`
	UserID  string `json:"user_id,omitempty"`
	Cohort  string `json:"cohort,omitempty"`
}

// Entry is an encoded heatmap image. Stale entries must be re-rendered
// before they are served.
type Entry struct {
	PNG []byte `json:"-"`

	// Layers is the number of user layers summed into PNG.
	Layers int `json:"layers"`

	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LayerCache is the write-through store used by the compositor.
type LayerCache interface {
	// Get returns the entry for key. found is false on a miss.
	Get(ctx context.Context, key Key) (entry Entry, found bool, err error)

	// Put creates or replaces the entry for key.
	Put(ctx context.Context, key Key, entry Entry) error

	// MarkStale flags every entry of an image as stale and returns how many
	// entries were flagged.
	MarkStale(ctx context.Context, imageID string) (int, error)
}
