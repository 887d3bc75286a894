package markdown

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-mdsite/internal/htmlnode"
	"github.com/goliatone/go-mdsite/internal/markdown/inline"
)

// RootTag is the element wrapping every compiled document.
const RootTag = "div"

// ErrUnknownBlockType is returned when a block kind has no compilation rule.
var ErrUnknownBlockType = errors.New("markdown: unknown block type")

// ToHTMLNode compiles a whole document into a div containing one element per
// block, in document order. The first failing block aborts compilation.
func ToHTMLNode(document string) (htmlnode.Node, error) {
	blocks := SplitBlocks(document)
	children := make([]htmlnode.Node, 0, len(blocks))
	for i, block := range blocks {
		kind := Classify(block)
		node, err := BlockToNode(block, kind)
		if err != nil {
			return htmlnode.Node{}, fmt.Errorf("markdown: block %d (%s): %w", i+1, kind.Type, err)
		}
		children = append(children, node)
	}
	return htmlnode.NewParent(RootTag, children), nil
}

// BlockToNode builds the element for a single classified block.
func BlockToNode(block string, kind BlockKind) (htmlnode.Node, error) {
	switch kind.Type {
	case BlockHeading:
		return headingNode(block, kind.Level)
	case BlockParagraph:
		return paragraphNode(block)
	case BlockQuote:
		return quoteNode(block)
	case BlockUnorderedList:
		return listNode("ul", block, func(line string) string {
			return strings.TrimPrefix(line, listItemMarker)
		})
	case BlockOrderedList:
		return listNode("ol", block, func(line string) string {
			_, item, _ := strings.Cut(line, ". ")
			return item
		})
	case BlockCode:
		return codeNode(block), nil
	default:
		return htmlnode.Node{}, fmt.Errorf("%w: %s", ErrUnknownBlockType, kind.Type)
	}
}

func headingNode(block string, level int) (htmlnode.Node, error) {
	if level < 1 || level > maxHeadingLevel {
		level = headingLevel(block)
	}
	if level == 0 {
		return htmlnode.Node{}, fmt.Errorf("%w: %q is not a heading", ErrUnknownBlockType, block)
	}
	text := strings.TrimSpace(block[level+1:])
	children, err := inline.ToNodes(text)
	if err != nil {
		return htmlnode.Node{}, err
	}
	return htmlnode.NewParent(fmt.Sprintf("h%d", level), children), nil
}

func paragraphNode(block string) (htmlnode.Node, error) {
	text := strings.Join(strings.Fields(block), " ")
	children, err := inline.ToNodes(text)
	if err != nil {
		return htmlnode.Node{}, err
	}
	return htmlnode.NewParent("p", children), nil
}

func quoteNode(block string) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimPrefix(line, quoteMarker)
		stripped = append(stripped, strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	children, err := inline.ToNodes(strings.Join(stripped, "\n"))
	if err != nil {
		return htmlnode.Node{}, err
	}
	return htmlnode.NewParent("blockquote", children), nil
}

func listNode(tag, block string, item func(string) string) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	items := make([]htmlnode.Node, 0, len(lines))
	for _, line := range lines {
		children, err := inline.ToNodes(item(line))
		if err != nil {
			return htmlnode.Node{}, err
		}
		items = append(items, htmlnode.NewParent("li", children))
	}
	return htmlnode.NewParent(tag, items), nil
}

// codeNode keeps the lines between the fences verbatim apart from trimming,
// without inline tokenization.
func codeNode(block string) htmlnode.Node {
	lines := strings.Split(block, "\n")
	var inner []string
	if len(lines) > 2 {
		inner = lines[1 : len(lines)-1]
	}
	trimmed := make([]string, 0, len(inner))
	for _, line := range inner {
		trimmed = append(trimmed, strings.TrimSpace(line))
	}
	text := strings.Join(trimmed, "\n") + "\n"
	code := htmlnode.NewParent("code", []htmlnode.Node{htmlnode.Text(text)})
	return htmlnode.NewParent("pre", []htmlnode.Node{code})
}
