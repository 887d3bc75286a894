package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// ParseFrontMatter splits an optional YAML (---) or TOML (+++) header from the
// Markdown body. Files without a header return an empty FrontMatter and the
// whole source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var header pageHeader
	body, err := frontmatter.Parse(bytes.NewReader(source), &header)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return header.frontMatter(), body, nil
}

// BuildDocument parses source into a Document. BodyHTML and Title are left
// empty for the service to fill in.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

type pageHeader struct {
	Title    string         `yaml:"title" toml:"title"`
	Slug     string         `yaml:"slug" toml:"slug"`
	Summary  string         `yaml:"summary" toml:"summary"`
	Template string         `yaml:"template" toml:"template"`
	Tags     []string       `yaml:"tags" toml:"tags"`
	Author   string         `yaml:"author" toml:"author"`
	Date     time.Time      `yaml:"date" toml:"date"`
	Draft    bool           `yaml:"draft" toml:"draft"`
	Custom   map[string]any `yaml:",inline" toml:"-"`
}

func (h pageHeader) frontMatter() interfaces.FrontMatter {
	custom := make(map[string]any, len(h.Custom))
	raw := make(map[string]any, len(h.Custom)+8)
	for key, value := range h.Custom {
		custom[key] = value
		raw[key] = value
	}

	set := func(key string, value any, present bool) {
		if present {
			raw[key] = value
		}
	}
	set("title", h.Title, h.Title != "")
	set("slug", h.Slug, h.Slug != "")
	set("summary", h.Summary, h.Summary != "")
	set("template", h.Template, h.Template != "")
	set("tags", append([]string(nil), h.Tags...), len(h.Tags) > 0)
	set("author", h.Author, h.Author != "")
	set("date", h.Date, !h.Date.IsZero())
	raw["draft"] = h.Draft

	return interfaces.FrontMatter{
		Title:    h.Title,
		Slug:     h.Slug,
		Summary:  h.Summary,
		Template: h.Template,
		Tags:     append([]string(nil), h.Tags...),
		Author:   h.Author,
		Date:     h.Date,
		Draft:    h.Draft,
		Custom:   custom,
		Raw:      raw,
	}
}
