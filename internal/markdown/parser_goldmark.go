package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// GoldmarkParser renders CommonMark through goldmark. It is offered as an
// alternative engine for sites that need tables, footnotes and the other
// extensions the builtin grammar does not cover.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions

	mu      sync.Mutex
	engines map[string]goldmark.Markdown
}

// NewGoldmarkParser constructs a parser. Empty extension lists enable GFM,
// linkify and task lists.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaults: defaults,
		engines:  map[string]goldmark.Markdown{},
	}
}

func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("goldmark convert: %w", err)
	}
	return buf.Bytes(), nil
}

// engine returns a configured goldmark instance, building it once per
// distinct option set.
func (p *GoldmarkParser) engine(opts interfaces.ParseOptions) goldmark.Markdown {
	names := extensionNames(opts.Extensions)
	key := fmt.Sprintf("%s|wrap=%t|safe=%t", strings.Join(names, ","), opts.HardWraps, opts.SafeMode)

	p.mu.Lock()
	defer p.mu.Unlock()
	if md, ok := p.engines[key]; ok {
		return md
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	}
	if exts := extenders(names); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	md := goldmark.New(engineOptions...)
	p.engines[key] = md
	return md
}

var goldmarkExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

var defaultGoldmarkExtensions = []string{"gfm", "linkify", "tasklist"}

// extensionNames normalises, dedupes and sorts the requested names, dropping
// the ones goldmark does not know.
func extensionNames(requested []string) []string {
	if len(requested) == 0 {
		return defaultGoldmarkExtensions
	}
	seen := map[string]struct{}{}
	names := make([]string, 0, len(requested))
	for _, name := range requested {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, known := goldmarkExtensions[key]; !known {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

func extenders(names []string) []goldmark.Extender {
	out := make([]goldmark.Extender, 0, len(names))
	for _, name := range names {
		out = append(out, goldmarkExtensions[name])
	}
	return out
}
