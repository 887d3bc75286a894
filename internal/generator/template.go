package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	titlePlaceholder   = "{{ Title }}"
	contentPlaceholder = "{{ Content }}"
)

// ErrTemplateMissingContent is returned for templates without a
// "{{ Content }}" placeholder.
var ErrTemplateMissingContent = errors.New("generator: template has no {{ Content }} placeholder")

// DefaultTemplate is used when no template file is configured.
const DefaultTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ Title }}</title>
  <link href="/index.css" rel="stylesheet">
</head>
<body>
  <article>{{ Content }}</article>
</body>
</html>
`

// Template is an HTML page with Title and Content placeholders.
type Template struct {
	name   string
	source string
}

func ParseTemplate(name, source string) (*Template, error) {
	if !strings.Contains(source, contentPlaceholder) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissingContent, name)
	}
	return &Template{name: name, source: source}, nil
}

func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("generator: read template %s: %w", path, err)
	}
	return ParseTemplate(path, string(data))
}

func (t *Template) Name() string {
	return t.name
}

// Apply fills in the placeholders and then rewrites root relative href and
// src attributes, including the ones inside content, to live under basePath.
func (t *Template) Apply(title, content, basePath string) string {
	page := strings.ReplaceAll(t.source, titlePlaceholder, title)
	page = strings.ReplaceAll(page, contentPlaceholder, content)

	base := NormalizeBasePath(basePath)
	if base == "/" {
		return page
	}
	page = strings.ReplaceAll(page, `href="/`, `href="`+base)
	page = strings.ReplaceAll(page, `src="/`, `src="`+base)
	return page
}

// Fingerprint identifies what Apply would produce around any content: the
// template source and the normalized base path. Pages rendered with a
// different fingerprint are stale even when their source did not change.
func (t *Template) Fingerprint(basePath string) string {
	sum := sha256.Sum256([]byte(t.source + "\x00" + NormalizeBasePath(basePath)))
	return hex.EncodeToString(sum[:])
}

// NormalizeBasePath returns basePath with exactly one leading and one
// trailing slash. Blank input yields "/".
func NormalizeBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}
