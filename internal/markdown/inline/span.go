// Package inline turns a run of markdown text into typed spans (plain, bold,
// italic, code, link, image) and maps those spans onto html nodes.
package inline

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-mdsite/internal/htmlnode"
)

var (
	// ErrMalformedInlineMarkup reports an unterminated delimiter or an image/link
	// match that could not be located again while splitting.
	ErrMalformedInlineMarkup = errors.New("inline: malformed inline markup")
	// ErrUnknownSpanKind is returned when a span carries a kind outside the closed set.
	ErrUnknownSpanKind = errors.New("inline: unknown span kind")
	// ErrMissingTarget is returned when a link or image span has no target URL.
	ErrMissingTarget = errors.New("inline: link and image spans require a target")
)

// SpanKind is the closed set of inline span types.
type SpanKind int

const (
	PlainText SpanKind = iota
	Bold
	Italic
	Code
	Link
	Image
)

var spanKindNames = []string{
	PlainText: "PlainText",
	Bold:      "Bold",
	Italic:    "Italic",
	Code:      "Code",
	Link:      "Link",
	Image:     "Image",
}

func (k SpanKind) String() string {
	if k < 0 || int(k) >= len(spanKindNames) {
		return fmt.Sprintf("SpanKind(%d)", int(k))
	}
	return spanKindNames[k]
}

// TextSpan is one typed unit of inline content. Target is only set for
// Link and Image spans.
type TextSpan struct {
	Kind   SpanKind
	Text   string
	Target string
}

// Plain builds a PlainText span.
func Plain(text string) TextSpan {
	return TextSpan{Kind: PlainText, Text: text}
}

// Validate checks the target invariant: Link and Image spans carry a
// non-empty target, every other kind carries none.
func (s TextSpan) Validate() error {
	switch s.Kind {
	case Link, Image:
		if s.Target == "" {
			return fmt.Errorf("%w: %s %q", ErrMissingTarget, s.Kind, s.Text)
		}
		return nil
	case PlainText, Bold, Italic, Code:
		if s.Target != "" {
			return fmt.Errorf("inline: %s span must not carry a target", s.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownSpanKind, int(s.Kind))
	}
}

// ToNode maps a span onto the html node that renders it.
func (s TextSpan) ToNode() (htmlnode.Node, error) {
	if err := s.Validate(); err != nil {
		return htmlnode.Node{}, err
	}
	switch s.Kind {
	case PlainText:
		return htmlnode.Text(s.Text), nil
	case Bold:
		return htmlnode.Leaf("b", s.Text), nil
	case Italic:
		return htmlnode.Leaf("i", s.Text), nil
	case Code:
		return htmlnode.Leaf("code", s.Text), nil
	case Link:
		return htmlnode.Leaf("a", s.Text, htmlnode.Attr("href", s.Target)), nil
	case Image:
		return htmlnode.Leaf("img", "", htmlnode.Attr("src", s.Target), htmlnode.Attr("alt", s.Text)), nil
	default:
		return htmlnode.Node{}, fmt.Errorf("%w: %d", ErrUnknownSpanKind, int(s.Kind))
	}
}

// ToNodes tokenizes text and maps every span onto an html node, preserving
// document order.
func ToNodes(text string) ([]htmlnode.Node, error) {
	spans, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	nodes := make([]htmlnode.Node, 0, len(spans))
	for _, span := range spans {
		node, err := span.ToNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
