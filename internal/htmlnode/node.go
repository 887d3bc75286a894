// Package htmlnode models the HTML tree produced by the markdown compiler and
// serializes it to text.
package htmlnode

import (
	"errors"
	"strings"
)

var (
	// ErrMissingTag is returned when a parent node without a tag is rendered.
	ErrMissingTag = errors.New("htmlnode: parent node requires a tag")
	// ErrMissingValue is returned when a leaf node is constructed without a value.
	ErrMissingValue = errors.New("htmlnode: leaf node requires a value")
)

// Attribute is a single key/value pair serialized into an opening tag.
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps insertion order so rendered output is deterministic.
type Attributes []Attribute

// Attr is a shorthand constructor for a single attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func (a Attributes) render(b *strings.Builder) {
	for _, attr := range a {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attr.Value)
		b.WriteByte('"')
	}
}

// Node is either a leaf (text with an optional wrapping tag) or a parent
// (a tag wrapping an ordered list of children it exclusively owns).
type Node struct {
	leaf     bool
	tag      string
	value    string
	attrs    Attributes
	children []Node
}

// NewLeaf builds a leaf node. A nil value is rejected with ErrMissingValue;
// an empty tag renders the value without a wrapping element.
func NewLeaf(tag string, value *string, attrs ...Attribute) (Node, error) {
	if value == nil {
		return Node{}, ErrMissingValue
	}
	return Leaf(tag, *value, attrs...), nil
}

// Leaf builds a leaf node from a value that is known to be present.
func Leaf(tag, value string, attrs ...Attribute) Node {
	return Node{
		leaf:  true,
		tag:   tag,
		value: value,
		attrs: cloneAttributes(attrs),
	}
}

// Text builds an untagged leaf that renders its value verbatim.
func Text(value string) Node {
	return Leaf("", value)
}

// NewParent builds a parent node. The tag is checked at render time.
func NewParent(tag string, children []Node, attrs ...Attribute) Node {
	return Node{
		tag:      tag,
		children: append([]Node(nil), children...),
		attrs:    cloneAttributes(attrs),
	}
}

// IsLeaf reports whether the node was built as a leaf.
func (n Node) IsLeaf() bool { return n.leaf }

// Tag returns the node tag, empty for raw leaves.
func (n Node) Tag() string { return n.tag }

// Value returns the leaf value; parents return an empty string.
func (n Node) Value() string { return n.value }

// Attributes returns a copy of the node attributes.
func (n Node) Attributes() Attributes { return cloneAttributes(n.attrs) }

// Children returns a copy of the child slice.
func (n Node) Children() []Node { return append([]Node(nil), n.children...) }

// Render serializes the node and its subtree to HTML. Values are written
// as-is; no escaping is performed.
func (n Node) Render() (string, error) {
	var b strings.Builder
	if err := n.renderTo(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (n Node) renderTo(b *strings.Builder) error {
	if n.leaf {
		if n.tag == "" {
			b.WriteString(n.value)
			return nil
		}
		openTag(b, n.tag, n.attrs)
		b.WriteString(n.value)
		closeTag(b, n.tag)
		return nil
	}

	if n.tag == "" {
		return ErrMissingTag
	}
	openTag(b, n.tag, n.attrs)
	for _, child := range n.children {
		if err := child.renderTo(b); err != nil {
			return err
		}
	}
	closeTag(b, n.tag)
	return nil
}

func openTag(b *strings.Builder, tag string, attrs Attributes) {
	b.WriteByte('<')
	b.WriteString(tag)
	attrs.render(b)
	b.WriteByte('>')
}

func closeTag(b *strings.Builder, tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func cloneAttributes(attrs []Attribute) Attributes {
	if len(attrs) == 0 {
		return nil
	}
	return append(Attributes(nil), attrs...)
}
