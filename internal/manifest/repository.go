package manifest

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	repository "github.com/goliatone/go-repository-bun"
)

// NewEntryRepository creates a repository for manifest entries identified by
// source path.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord:          func() *Entry { return &Entry{} },
		GetID:              func(entry *Entry) uuid.UUID { return entry.PageID },
		SetID:              func(entry *Entry, id uuid.UUID) { entry.PageID = id },
		GetIdentifier:      func() string { return "source" },
		GetIdentifierValue: func(entry *Entry) string { return entry.Source },
	})
}
