// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "strings"

// BlockKind identifies how a block of content is laid out in Word output.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
	BlockTable
)

// Block is one paragraph-level element parsed from Markdown-like content.
type Block struct {
	Kind  BlockKind
	Level int // heading level, 1-3
	Text  string
	Rows  [][]string // table rows
}

// Span is a run of inline text, optionally bold.
type Span struct {
	Text string
	Bold bool
}

// ParseBlocks splits content into blocks, one per line except for runs of
// pipe-delimited lines, which form a single table. Markdown separator rows
// ("|---|:--:|") inside a table are dropped.
func ParseBlocks(content string) []Block {
	var blocks []Block
	var table [][]string

	flushTable := func() {
		if len(table) > 0 {
			blocks = append(blocks, Block{Kind: BlockTable, Rows: table})
			table = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if isTableLine(trimmed) {
			if !isSeparatorRow(trimmed) {
				table = append(table, splitTableRow(trimmed))
			}
			continue
		}
		flushTable()

		switch {
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 3, Text: strings.TrimPrefix(line, "### ")})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 2, Text: strings.TrimPrefix(line, "## ")})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, Block{Kind: BlockHeading, Level: 1, Text: strings.TrimPrefix(line, "# ")})
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			blocks = append(blocks, Block{Kind: BlockBullet, Text: trimmed[2:]})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	flushTable()
	return blocks
}

func isTableLine(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "|") && strings.HasSuffix(s, "|")
}

func isSeparatorRow(s string) bool {
	inner := strings.Trim(s, "|")
	if inner == "" {
		return false
	}
	return strings.Trim(inner, "|-: ") == "" && strings.Contains(inner, "-")
}

func splitTableRow(s string) []string {
	parts := strings.Split(strings.Trim(s, "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseSpans splits text on "**" markers into alternating plain and bold
// spans. An unmatched trailing marker is kept as literal text.
func ParseSpans(text string) []Span {
	parts := strings.Split(text, "**")
	if len(parts)%2 == 0 {
		// Odd number of markers: rejoin the dangling one.
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + "**" + parts[last]
		parts = parts[:last]
	}

	var spans []Span
	for i, p := range parts {
		if p == "" {
			continue
		}
		spans = append(spans, Span{Text: p, Bold: i%2 == 1})
	}
	return spans
}
