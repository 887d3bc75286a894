package generator

import (
	"time"

	"github.com/google/uuid"
)

// RenderedPage is one page produced by a build.
type RenderedPage struct {
	PageID   uuid.UUID
	Source   string
	Output   string
	Route    string
	Title    string
	Slug     string
	Template string
	HTML     string
	Checksum string
	// RenderKey is the template fingerprint the page was rendered with.
	RenderKey string
	Modified  time.Time
	Duration  time.Duration
}

// RenderDiagnostic records what happened to one source document.
type RenderDiagnostic struct {
	Source   string
	Output   string
	Skipped  bool
	Reason   string
	Duration time.Duration
	Err      error
}

const (
	skipDraft     = "draft"
	skipUnchanged = "unchanged"
)

type renderOutcome struct {
	page       *RenderedPage
	diagnostic RenderDiagnostic
	skipped    bool
	err        error
}
