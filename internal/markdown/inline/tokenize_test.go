package inline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSplitDelimiterBold(t *testing.T) {
	spans, err := SplitDelimiter([]TextSpan{Plain("This is text with a **bolded phrase** in the middle")}, MarkerBold, Bold)
	if err != nil {
		t.Fatalf("SplitDelimiter: %v", err)
	}
	want := []TextSpan{
		Plain("This is text with a "),
		{Kind: Bold, Text: "bolded phrase"},
		Plain(" in the middle"),
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("unexpected spans\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestSplitDelimiterDropsEmptySegments(t *testing.T) {
	spans, err := SplitDelimiter([]TextSpan{Plain("**bold** and **more**")}, MarkerBold, Bold)
	if err != nil {
		t.Fatalf("SplitDelimiter: %v", err)
	}
	want := []TextSpan{
		{Kind: Bold, Text: "bold"},
		Plain(" and "),
		{Kind: Bold, Text: "more"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("unexpected spans\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestSplitDelimiterLeavesStyledSpansAlone(t *testing.T) {
	input := []TextSpan{{Kind: Code, Text: "a_b"}, Plain("x _y_")}
	spans, err := SplitDelimiter(input, MarkerItalic, Italic)
	if err != nil {
		t.Fatalf("SplitDelimiter: %v", err)
	}
	want := []TextSpan{{Kind: Code, Text: "a_b"}, Plain("x "), {Kind: Italic, Text: "y"}}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("unexpected spans\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestTokenizeUnclosedBold(t *testing.T) {
	_, err := Tokenize("**bold")
	if !errors.Is(err, ErrMalformedInlineMarkup) {
		t.Fatalf("expected ErrMalformedInlineMarkup, got %v", err)
	}
}

func TestTokenizeUnclosedCode(t *testing.T) {
	_, err := Tokenize("a `b")
	if !errors.Is(err, ErrMalformedInlineMarkup) {
		t.Fatalf("expected ErrMalformedInlineMarkup, got %v", err)
	}
}

func TestExtractImages(t *testing.T) {
	got := ExtractImages("This is text with an ![image](https://i.imgur.com/zjjcJKZ.png) and ![second](/x.png)")
	want := []Match{
		{Text: "image", Target: "https://i.imgur.com/zjjcJKZ.png"},
		{Text: "second", Target: "/x.png"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected matches %#v", got)
	}
}

func TestExtractLinksSkipsImages(t *testing.T) {
	got := ExtractLinks("a [to boot dev](https://www.boot.dev) b ![img](http://y) c [yt](https://youtube.com)")
	want := []Match{
		{Text: "to boot dev", Target: "https://www.boot.dev"},
		{Text: "yt", Target: "https://youtube.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected matches %#v", got)
	}
}

func TestExtractLinksRejectsNestedBrackets(t *testing.T) {
	if got := ExtractLinks("[a [b](http://x)"); len(got) != 1 || got[0].Text != "b" {
		t.Fatalf("expected only the inner link to match, got %#v", got)
	}
	if got := ExtractLinks("[a](http://(x))"); len(got) != 0 {
		t.Fatalf("expected parentheses in url to prevent a match, got %#v", got)
	}
}

func TestExtractLinksRequiresTarget(t *testing.T) {
	if got := ExtractLinks("[empty]()"); len(got) != 0 {
		t.Fatalf("expected empty target not to match, got %#v", got)
	}
}

func TestTokenizeKeepsEmptyTargetsAsPlainText(t *testing.T) {
	if got := ExtractImages("![a]()"); len(got) != 0 {
		t.Fatalf("expected empty image target not to match, got %#v", got)
	}

	text := "see ![a]() and [x]()"
	spans, err := Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []TextSpan{Plain(text)}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("expected a single plain span\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestTokenizeMixedLinksAndImages(t *testing.T) {
	spans, err := Tokenize("A [link](http://x) and ![img](http://y)")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []TextSpan{
		Plain("A "),
		{Kind: Link, Text: "link", Target: "http://x"},
		Plain(" and "),
		{Kind: Image, Text: "img", Target: "http://y"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("unexpected spans\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestTokenizeAllKinds(t *testing.T) {
	text := "This is **text** with an _italic_ word and a `code block` and an ![obi wan image](https://i.imgur.com/fJRm4Vk.jpeg) and a [link](https://boot.dev)"
	spans, err := Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []TextSpan{
		Plain("This is "),
		{Kind: Bold, Text: "text"},
		Plain(" with an "),
		{Kind: Italic, Text: "italic"},
		Plain(" word and a "),
		{Kind: Code, Text: "code block"},
		Plain(" and an "),
		{Kind: Image, Text: "obi wan image", Target: "https://i.imgur.com/fJRm4Vk.jpeg"},
		Plain(" and a "),
		{Kind: Link, Text: "link", Target: "https://boot.dev"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("unexpected spans\nwant %#v\ngot  %#v", want, spans)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	spans, err := Tokenize("")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("expected no spans, got %#v", spans)
	}
}

func TestTokenizeDisplayTextDropsMarkup(t *testing.T) {
	text := "**Go** is _fun_, see `go doc` or [the site](https://go.dev)"
	spans, err := Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text)
	}
	if b.String() != "Go is fun, see go doc or the site" {
		t.Fatalf("unexpected display text %q", b.String())
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	text := "x **y** _z_ [a](b) ![c](d)"
	first, err := Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Tokenize(text)
		if err != nil {
			t.Fatalf("Tokenize: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %#v vs %#v", i, first, again)
		}
	}
}
