package generator

import (
	"context"
	"sort"

	"github.com/goliatone/go-mdsite/internal/manifest"
)

// loadManifest returns the entries recorded by the previous build. A nil
// store yields an empty set so every page renders.
func (s *service) loadManifest(ctx context.Context) (map[string]manifest.Entry, error) {
	if s.deps.Manifest == nil {
		return map[string]manifest.Entry{}, nil
	}
	entries, err := s.deps.Manifest.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]manifest.Entry{}
	}
	return entries, nil
}

// persistManifest records freshly written pages and, for full builds, drops
// entries whose sources disappeared.
func (s *service) persistManifest(ctx context.Context, buildID string, written []RenderedPage, previous map[string]manifest.Entry, discovered []string, full bool) error {
	if s.deps.Manifest == nil {
		return nil
	}

	if len(written) > 0 {
		entries := make([]manifest.Entry, 0, len(written))
		for _, page := range written {
			entries = append(entries, manifest.Entry{
				PageID:     page.PageID,
				Source:     page.Source,
				Slug:       page.Slug,
				Title:      page.Title,
				Output:     page.Output,
				Checksum:   page.Checksum,
				RenderKey:  page.RenderKey,
				BuildID:    buildID,
				RenderedAt: s.now().UTC(),
			})
		}
		if err := s.deps.Manifest.Save(ctx, entries...); err != nil {
			return err
		}
	}

	if !full {
		return nil
	}
	present := make(map[string]struct{}, len(discovered))
	for _, source := range discovered {
		present[source] = struct{}{}
	}
	var stale []string
	for source := range previous {
		if _, ok := present[source]; !ok {
			stale = append(stale, source)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	sort.Strings(stale)
	s.logger.Debug("generator.manifest.pruned", "sources", stale)
	return s.deps.Manifest.Delete(ctx, stale...)
}
