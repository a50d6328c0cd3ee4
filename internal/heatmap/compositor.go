package heatmap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/agile-geoscience/pickthat/internal/store"
)

// Pick is one user's submission for an image.
type Pick struct {
	UserID   string   `json:"user_id"`
	Cohort   string   `json:"cohort,omitempty"`
	Geometry Geometry `json:"geometry"`
}

// Result is a rendered heatmap.
type Result struct {
	PNG []byte `json:"-"`

	// Layers is the number of user layers summed into the image.
	Layers int `json:"layers"`

	// Skipped lists users whose picks could not be rasterised.
	Skipped []string `json:"skipped,omitempty"`

	// Cached is true when the image came from the layer cache.
	Cached bool `json:"cached"`
}

// Compositor renders per-user and composite heatmaps and writes them through
// a LayerCache. A nil cache disables caching.
type Compositor struct {
	cache   store.LayerCache
	workers int

	// Debug enables per-layer logging.
	Debug bool
}

// NewCompositor returns a compositor writing through cache.
func NewCompositor(cache store.LayerCache) *Compositor {
	return &Compositor{
		cache:   cache,
		workers: runtime.NumCPU(),
	}
}

// UserHeatmap renders one user's dilated layer as a colour mapped PNG.
//
// Parameters:
//   - ctx: Bounds the cache write.
//   - imageID: The image the pick belongs to.
//   - spec: Image size and pick style.
//   - p: The user's pick. p.UserID must be set.
//
// Returns:
//   - *Result: The PNG with Layers set to 1.
//   - error: Non-nil if the pick cannot be drawn or cached.
//
// The PNG is stored under (imageID, user, cohort). An empty user id would
// share the key of the composite, so it is rejected.
//
// # Errors
//
//   - ErrMissingUserID if p.UserID is empty
//   - any Rasterize error, wrapped with the user id
//   - cache write failures
func (c *Compositor) UserHeatmap(ctx context.Context, imageID string, spec ImageSpec, p Pick) (*Result, error) {
	if p.UserID == "" {
		return nil, ErrMissingUserID
	}
	layer, err := UserLayer(p.Geometry, spec)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", p.UserID, err)
	}
	png, err := EncodePNG(layer)
	if err != nil {
		return nil, err
	}
	key := store.Key{ImageID: imageID, UserID: p.UserID, Cohort: p.Cohort}
	if err := c.put(ctx, key, png, 1); err != nil {
		return nil, err
	}
	return &Result{PNG: png, Layers: 1}, nil
}

// Heatmap renders the composite heatmap of picks for an image.
//
// When cohort is non-empty only picks from that cohort contribute. A fresh
// (non-stale) cached composite is returned as is. Otherwise every user's
// layer is rendered concurrently; users whose picks fail to rasterise are
// logged and skipped rather than failing the composite. The result is
// written back to the cache.
func (c *Compositor) Heatmap(ctx context.Context, imageID string, spec ImageSpec, picks []Pick, cohort string) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	key := store.Key{ImageID: imageID, Cohort: cohort}

	if c.cache != nil {
		entry, found, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Printf("heatmap cache lookup for %s failed: %v", imageID, err)
		case found && !entry.Stale:
			return &Result{PNG: entry.PNG, Layers: entry.Layers, Cached: true}, nil
		}
	}

	layers, skipped, err := c.renderLayers(ctx, spec, filterCohort(picks, cohort))
	if err != nil {
		return nil, err
	}

	acc, err := Composite(spec.Height, spec.Width, layers...)
	if err != nil {
		return nil, err
	}
	png, err := EncodePNG(acc)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, key, png, len(layers)); err != nil {
		return nil, err
	}
	return &Result{PNG: png, Layers: len(layers), Skipped: skipped}, nil
}

// Invalidate marks every cached heatmap of an image stale.
func (c *Compositor) Invalidate(ctx context.Context, imageID string) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.cache.MarkStale(ctx, imageID)
}

// renderLayers builds the dilated layer of each pick. Failed picks are
// reported by user id; only context cancellation aborts the whole batch.
func (c *Compositor) renderLayers(ctx context.Context, spec ImageSpec, picks []Pick) ([]*Layer, []string, error) {
	out := make([]*Layer, len(picks))
	failed := make([]error, len(picks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, p := range picks {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layer, err := UserLayer(p.Geometry, spec)
			if err != nil {
				failed[i] = err
				return nil
			}
			out[i] = layer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	layers := make([]*Layer, 0, len(picks))
	var skipped []string
	for i, p := range picks {
		if failed[i] != nil {
			log.Printf("skipping heatmap layer for user %s: %v", p.UserID, failed[i])
			skipped = append(skipped, p.UserID)
			continue
		}
		if c.Debug {
			log.Printf("rendered layer for user %s (%d cells)", p.UserID, out[i].Count())
		}
		layers = append(layers, out[i])
	}
	return layers, skipped, nil
}

func (c *Compositor) put(ctx context.Context, key store.Key, png []byte, layers int) error {
	if c.cache == nil {
		return nil
	}
	if err := c.cache.Put(ctx, key, store.Entry{PNG: png, Layers: layers}); err != nil {
		return fmt.Errorf("cache heatmap for %s: %w", key.ImageID, err)
	}
	return nil
}

func filterCohort(picks []Pick, cohort string) []Pick {
	if cohort == "" {
		return picks
	}
	kept := make([]Pick, 0, len(picks))
	for _, p := range picks {
		if p.Cohort == cohort {
			kept = append(kept, p)
		}
	}
	return kept
}

// IsPickError reports whether err comes from bad pick data rather than a
// system failure.
func IsPickError(err error) bool {
	return errors.Is(err, ErrEmptyGeometry) ||
		errors.Is(err, ErrMissingUserID) ||
		errors.Is(err, ErrMalformedGeometry) ||
		errors.Is(err, ErrUnknownPickStyle)
}
