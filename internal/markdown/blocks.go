package markdown

import (
	"fmt"
	"strings"
	"unicode"
)

// BlockType is the closed set of block level constructs.
type BlockType int

const (
	BlockParagraph BlockType = iota
	BlockHeading
	BlockCode
	BlockQuote
	BlockUnorderedList
	BlockOrderedList
)

var blockTypeNames = []string{
	BlockParagraph:     "paragraph",
	BlockHeading:       "heading",
	BlockCode:          "code",
	BlockQuote:         "quote",
	BlockUnorderedList: "unordered_list",
	BlockOrderedList:   "ordered_list",
}

func (t BlockType) String() string {
	if t < 0 || int(t) >= len(blockTypeNames) {
		return fmt.Sprintf("BlockType(%d)", int(t))
	}
	return blockTypeNames[t]
}

// BlockKind is the classification of one block. Level is the heading level
// (1-6) for headings and zero otherwise.
type BlockKind struct {
	Type  BlockType
	Level int
}

const (
	codeFence        = "```"
	quoteMarker      = ">"
	listItemMarker   = "- "
	maxHeadingLevel  = 6
	headingCharacter = '#'
)

// SplitBlocks splits a document on blank lines, trims every block and drops
// the ones left empty.
func SplitBlocks(document string) []string {
	document = normalizeNewlines(document)
	parts := strings.Split(document, "\n\n")
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, trimmed)
	}
	return blocks
}

// Classify determines the block type from its text alone. Rules are checked
// in order and the first match wins: heading, code, quote, unordered list,
// ordered list, paragraph.
func Classify(block string) BlockKind {
	if level := headingLevel(block); level > 0 {
		return BlockKind{Type: BlockHeading, Level: level}
	}

	lines := strings.Split(block, "\n")

	if len(lines) > 1 && isFence(lines[0]) && isFence(lines[len(lines)-1]) {
		return BlockKind{Type: BlockCode}
	}

	if strings.HasPrefix(block, quoteMarker) {
		if allLines(lines, func(line string) bool { return strings.HasPrefix(line, quoteMarker) }) {
			return BlockKind{Type: BlockQuote}
		}
		return BlockKind{Type: BlockParagraph}
	}

	if strings.HasPrefix(block, listItemMarker) {
		if allLines(lines, func(line string) bool { return strings.HasPrefix(line, listItemMarker) }) {
			return BlockKind{Type: BlockUnorderedList}
		}
		return BlockKind{Type: BlockParagraph}
	}

	if strings.HasPrefix(block, orderedMarker(1)) {
		for i, line := range lines {
			if !strings.HasPrefix(line, orderedMarker(i+1)) {
				return BlockKind{Type: BlockParagraph}
			}
		}
		return BlockKind{Type: BlockOrderedList}
	}

	return BlockKind{Type: BlockParagraph}
}

// headingLevel returns the number of leading '#' when the block starts with
// one to six of them followed by a space, and zero otherwise.
func headingLevel(block string) int {
	level := 0
	for level < len(block) && block[level] == headingCharacter {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return 0
	}
	if level >= len(block) || block[level] != ' ' {
		return 0
	}
	return level
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), codeFence)
}

func orderedMarker(n int) string {
	return fmt.Sprintf("%d. ", n)
}

func allLines(lines []string, fn func(string) bool) bool {
	for _, line := range lines {
		if !fn(line) {
			return false
		}
	}
	return true
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
