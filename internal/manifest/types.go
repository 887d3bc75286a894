// Package manifest records what each build rendered so later builds can skip
// unchanged sources.
package manifest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const manifestTable = "mdsite_manifest"

// ErrUnsupportedDriver is returned by Open for unknown drivers.
var ErrUnsupportedDriver = errors.New("manifest: unsupported driver")

// Entry is the last successful render of one source file.
type Entry struct {
	bun.BaseModel `bun:"table:mdsite_manifest,alias:mm"`

	PageID     uuid.UUID `bun:"id,pk,type:uuid" json:"page_id"`
	Source     string    `bun:"source,notnull,unique" json:"source"`
	Slug       string    `bun:"slug,notnull" json:"slug"`
	Title      string    `bun:"title,notnull" json:"title"`
	Output     string    `bun:"output,notnull" json:"output"`
	Checksum   string    `bun:"checksum,notnull" json:"checksum"`
	RenderKey  string    `bun:"render_key,notnull,default:''" json:"render_key"`
	BuildID    string    `bun:"build_id,notnull" json:"build_id"`
	RenderedAt time.Time `bun:"rendered_at,nullzero" json:"rendered_at"`
}

// Store persists manifest entries keyed by source path.
type Store interface {
	// Load returns every entry keyed by Source.
	Load(ctx context.Context) (map[string]Entry, error)
	// Save inserts or replaces entries by Source.
	Save(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, sources ...string) error
	Reset(ctx context.Context) error
	Close() error
}

// Unchanged reports whether the entry for source was rendered from the same
// checksum, to the same output path and with the same render key (template
// and base path fingerprint). Entries without a render key never match.
func Unchanged(entries map[string]Entry, source, checksum, output, renderKey string) bool {
	entry, ok := entries[source]
	return ok &&
		entry.Checksum == checksum &&
		entry.Output == output &&
		entry.RenderKey != "" &&
		entry.RenderKey == renderKey
}
