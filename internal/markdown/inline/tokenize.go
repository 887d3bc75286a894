package inline

import (
	"fmt"
	"regexp"
	"strings"
)

// Delimiter markers, applied in this order.
const (
	MarkerBold   = "**"
	MarkerItalic = "_"
	MarkerCode   = "`"
)

var delimiterPasses = []struct {
	marker string
	kind   SpanKind
}{
	{MarkerBold, Bold},
	{MarkerItalic, Italic},
	{MarkerCode, Code},
}

// Alt/text may not contain brackets and the URL may not contain parentheses.
// An empty URL never matches so link and image spans always carry a target.
var (
	imagePattern = regexp.MustCompile(`!\[([^\[\]]*)\]\(([^\(\)]+)\)`)
	linkPattern  = regexp.MustCompile(`\[([^\[\]]*)\]\(([^\(\)]+)\)`)
)

// Match is one image or link found in a run of text.
type Match struct {
	Text   string
	Target string
}

// Tokenize converts text into an ordered list of spans: bold, italic and
// code delimiters first, then images, then links. Only spans that are still
// PlainText are split by each later pass.
func Tokenize(text string) ([]TextSpan, error) {
	spans := []TextSpan{Plain(text)}

	var err error
	for _, pass := range delimiterPasses {
		spans, err = SplitDelimiter(spans, pass.marker, pass.kind)
		if err != nil {
			return nil, err
		}
	}

	spans, err = SplitImages(spans)
	if err != nil {
		return nil, err
	}
	return SplitLinks(spans)
}

// SplitDelimiter splits every PlainText span on marker. Odd segments become
// spans of kind, even segments stay PlainText, and empty segments are
// dropped. An even segment count means the delimiter was never closed.
func SplitDelimiter(spans []TextSpan, marker string, kind SpanKind) ([]TextSpan, error) {
	out := make([]TextSpan, 0, len(spans))
	for _, span := range spans {
		if span.Kind != PlainText {
			out = append(out, span)
			continue
		}

		sections := strings.Split(span.Text, marker)
		if len(sections)%2 == 0 {
			return nil, fmt.Errorf("%w: %q section not closed in %q", ErrMalformedInlineMarkup, marker, span.Text)
		}
		for i, section := range sections {
			if section == "" {
				continue
			}
			if i%2 == 0 {
				out = append(out, Plain(section))
			} else {
				out = append(out, TextSpan{Kind: kind, Text: section})
			}
		}
	}
	return out, nil
}

// ExtractImages returns every ![alt](url) construct in text, left to right.
func ExtractImages(text string) []Match {
	found := imagePattern.FindAllStringSubmatch(text, -1)
	matches := make([]Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, Match{Text: m[1], Target: m[2]})
	}
	return matches
}

// ExtractLinks returns every [text](url) construct in text that is not part
// of an image, i.e. not immediately preceded by '!'.
func ExtractLinks(text string) []Match {
	var matches []Match
	offset := 0
	for offset < len(text) {
		loc := linkPattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			break
		}
		start := offset + loc[0]
		if start > 0 && text[start-1] == '!' {
			offset = start + 1
			continue
		}
		matches = append(matches, Match{
			Text:   text[offset+loc[2] : offset+loc[3]],
			Target: text[offset+loc[4] : offset+loc[5]],
		})
		offset += loc[1]
	}
	return matches
}

// SplitImages extracts image spans from every PlainText span.
func SplitImages(spans []TextSpan) ([]TextSpan, error) {
	return splitMatches(spans, Image, ExtractImages, func(m Match) string {
		return "![" + m.Text + "](" + m.Target + ")"
	})
}

// SplitLinks extracts link spans from every PlainText span. It runs after
// SplitImages so image syntax has already been consumed.
func SplitLinks(spans []TextSpan) ([]TextSpan, error) {
	return splitMatches(spans, Link, ExtractLinks, func(m Match) string {
		return "[" + m.Text + "](" + m.Target + ")"
	})
}

func splitMatches(spans []TextSpan, kind SpanKind, extract func(string) []Match, literal func(Match) string) ([]TextSpan, error) {
	out := make([]TextSpan, 0, len(spans))
	for _, span := range spans {
		if span.Kind != PlainText {
			out = append(out, span)
			continue
		}

		matches := extract(span.Text)
		if len(matches) == 0 {
			out = append(out, span)
			continue
		}

		remaining := span.Text
		for _, m := range matches {
			before, after, found := strings.Cut(remaining, literal(m))
			if !found {
				return nil, fmt.Errorf("%w: %s section %q not closed", ErrMalformedInlineMarkup, strings.ToLower(kind.String()), literal(m))
			}
			if before != "" {
				out = append(out, Plain(before))
			}
			out = append(out, TextSpan{Kind: kind, Text: m.Text, Target: m.Target})
			remaining = after
		}
		if remaining != "" {
			out = append(out, Plain(remaining))
		}
	}
	return out, nil
}
