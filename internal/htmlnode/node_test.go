package htmlnode

import (
	"errors"
	"testing"
)

func TestLeafRenderWithTag(t *testing.T) {
	got, err := Leaf("p", "Hello, world!").Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "<p>Hello, world!</p>" {
		t.Fatalf("unexpected html %q", got)
	}
}

func TestLeafRenderWithoutTagIsRaw(t *testing.T) {
	got, err := Text("Just <some> text.").Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Just <some> text." {
		t.Fatalf("expected raw value, got %q", got)
	}
}

func TestLeafRenderAttributesInInsertionOrder(t *testing.T) {
	node := Leaf("img", "", Attr("src", "http://y"), Attr("alt", "img"))
	got, err := node.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != `<img src="http://y" alt="img"></img>` {
		t.Fatalf("unexpected html %q", got)
	}
}

func TestNewLeafRequiresValue(t *testing.T) {
	_, err := NewLeaf("p", nil)
	if !errors.Is(err, ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}

	empty := ""
	node, err := NewLeaf("span", &empty)
	if err != nil {
		t.Fatalf("empty value must be accepted: %v", err)
	}
	if got, _ := node.Render(); got != "<span></span>" {
		t.Fatalf("unexpected html %q", got)
	}
}

func TestParentRenderNested(t *testing.T) {
	node := NewParent("p", []Node{
		Leaf("b", "Bold text"),
		Text("Normal text"),
		NewParent("span", []Node{Leaf("i", "italic")}),
		Leaf("a", "link", Attr("href", "https://example.com")),
	})

	got, err := node.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := `<p><b>Bold text</b>Normal text<span><i>italic</i></span><a href="https://example.com">link</a></p>`
	if got != want {
		t.Fatalf("unexpected html\nwant %q\ngot  %q", want, got)
	}
}

func TestParentRenderEmptyChildren(t *testing.T) {
	got, err := NewParent("div", nil).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "<div></div>" {
		t.Fatalf("unexpected html %q", got)
	}
}

func TestParentRenderMissingTag(t *testing.T) {
	_, err := NewParent("", []Node{Text("x")}).Render()
	if !errors.Is(err, ErrMissingTag) {
		t.Fatalf("expected ErrMissingTag, got %v", err)
	}
}

func TestParentRenderPropagatesChildFailure(t *testing.T) {
	inner := NewParent("", nil)
	_, err := NewParent("div", []Node{Text("ok"), inner}).Render()
	if !errors.Is(err, ErrMissingTag) {
		t.Fatalf("expected nested ErrMissingTag, got %v", err)
	}
}

func TestNewParentCopiesChildren(t *testing.T) {
	children := []Node{Text("a")}
	node := NewParent("p", children)
	children[0] = Text("b")

	got, _ := node.Render()
	if got != "<p>a</p>" {
		t.Fatalf("expected parent to own its children, got %q", got)
	}
}

func TestLeafMatchesNewLeaf(t *testing.T) {
	attrs := []Attribute{Attr("src", "a.png"), Attr("alt", "a")}
	empty := ""
	checked, err := NewLeaf("img", &empty, attrs...)
	if err != nil {
		t.Fatalf("NewLeaf: %v", err)
	}
	direct := Leaf("img", "", attrs...)
	attrs[0] = Attr("src", "changed.png")

	want := `<img src="a.png" alt="a"></img>`
	for name, node := range map[string]Node{"NewLeaf": checked, "Leaf": direct} {
		got, err := node.Render()
		if err != nil {
			t.Fatalf("%s render: %v", name, err)
		}
		if got != want || !node.IsLeaf() {
			t.Fatalf("%s: unexpected html %q", name, got)
		}
	}
}
