package markdown

import (
	"errors"
	"strings"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// ErrTitleNotFound is returned when a document has no level-1 heading line.
var ErrTitleNotFound = errors.New("markdown: no title found")

const titlePrefix = "# "

// ExtractTitle returns the text after "# " on the first line that starts
// with it. Lines inside code fences are not special.
func ExtractTitle(document string) (string, error) {
	for _, line := range strings.Split(normalizeNewlines(document), "\n") {
		if strings.HasPrefix(line, titlePrefix) {
			return line[len(titlePrefix):], nil
		}
	}
	return "", ErrTitleNotFound
}

// ResolveTitle prefers the front matter title and falls back to the first
// level-1 heading of the body.
func ResolveTitle(doc *interfaces.Document) (string, error) {
	if doc == nil {
		return "", ErrTitleNotFound
	}
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title, nil
	}
	return ExtractTitle(string(doc.Body))
}
