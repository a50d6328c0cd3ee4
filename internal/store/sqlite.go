package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS heatmaps (
	id         TEXT PRIMARY KEY,
	image_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL DEFAULT '',
	cohort     TEXT NOT NULL DEFAULT '',
	png        BLOB NOT NULL,
	layers     INTEGER NOT NULL DEFAULT 0,
	stale      INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS heatmaps_key ON heatmaps (image_id, user_id, cohort);
`

// SQLiteCache stores heatmaps in a SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (or creates) the database at path and ensures the
// heatmaps table exists.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open heatmap cache: %w", err)
	}
	c, err := NewSQLiteCache(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLiteCache wraps an open database and creates the schema.
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create heatmap schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get implements LayerCache.
func (c *SQLiteCache) Get(ctx context.Context, key Key) (Entry, bool, error) {
	var (
		e       Entry
		stale   int
		updated int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT png, layers, stale, updated_at FROM heatmaps WHERE image_id = ? AND user_id = ? AND cohort = ?`,
		key.ImageID, key.UserID, key.Cohort,
	).Scan(&e.PNG, &e.Layers, &stale, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get heatmap: %w", err)
	}
	e.Stale = stale != 0
	e.UpdatedAt = time.Unix(0, updated)
	return e, true, nil
}

// Put implements LayerCache.
func (c *SQLiteCache) Put(ctx context.Context, key Key, entry Entry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	if entry.PNG == nil {
		entry.PNG = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO heatmaps (id, image_id, user_id, cohort, png, layers, stale, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (image_id, user_id, cohort) DO UPDATE SET
			png = excluded.png,
			layers = excluded.layers,
			stale = excluded.stale,
			updated_at = excluded.updated_at
	`,
		uuid.New().String(),
		key.ImageID,
		key.UserID,
		key.Cohort,
		entry.PNG,
		entry.Layers,
		boolToInt(entry.Stale),
		entry.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put heatmap: %w", err)
	}
	return nil
}

// MarkStale implements LayerCache.
func (c *SQLiteCache) MarkStale(ctx context.Context, imageID string) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE heatmaps SET stale = 1 WHERE image_id = ? AND stale = 0`, imageID)
	if err != nil {
		return 0, fmt.Errorf("mark heatmaps stale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark heatmaps stale: %w", err)
	}
	return int(n), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
