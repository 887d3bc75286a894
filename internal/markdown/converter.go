package markdown

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

const (
	EngineBuiltin  = "builtin"
	EngineGoldmark = "goldmark"
)

// Converter is the builtin engine: SplitBlocks, Classify and BlockToNode
// followed by a render of the resulting tree. Output is not HTML-escaped.
type Converter struct{}

var _ interfaces.MarkdownParser = (*Converter)(nil)

func NewConverter() *Converter {
	return &Converter{}
}

// Convert returns the rendered div for document.
func (c *Converter) Convert(document string) (string, error) {
	root, err := ToHTMLNode(document)
	if err != nil {
		return "", wrapConversionError(err)
	}
	html, err := root.Render()
	if err != nil {
		return "", wrapConversionError(err)
	}
	return html, nil
}

func (c *Converter) Parse(markdown []byte) ([]byte, error) {
	html, err := c.Convert(string(markdown))
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

// ParseWithOptions ignores opts; the builtin grammar has no switches.
func (c *Converter) ParseWithOptions(markdown []byte, _ interfaces.ParseOptions) ([]byte, error) {
	return c.Parse(markdown)
}

// NewParser returns the parser registered under engine. An empty name selects
// the builtin engine.
func NewParser(engine string, defaults interfaces.ParseOptions) (interfaces.MarkdownParser, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineBuiltin:
		return NewConverter(), nil
	case EngineGoldmark:
		return NewGoldmarkParser(defaults), nil
	default:
		return nil, fmt.Errorf("markdown: unknown engine %q", engine)
	}
}
