// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext pulls positioned text fragments out of PDF documents.
// Glyph runs come from github.com/ledongthuc/pdf and are merged into
// fragments comparable to the text items a PDF viewer reports; structural
// validation and page counting use pdfcpu.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

var (
	// ErrInvalidPDF is returned when the input cannot be parsed as a PDF.
	ErrInvalidPDF = errors.New("invalid PDF")

	// ErrNoText is returned when a PDF parses but carries no text layer,
	// typically a scanned document.
	ErrNoText = errors.New("no extractable text in PDF (the document may contain only scanned images)")
)

const (
	defaultFragmentGap = 3.0
	defaultSpaceRatio  = 0.15

	// baselineSlack is how far two glyphs' Y may differ and still share a line.
	baselineSlack = 0.5
)

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte, cfg types.ExtractConfig) ([]types.TextItem, error) {
	return Extract(bytes.NewReader(data), int64(len(data)), cfg)
}

// Extract reads every page (or the first cfg.MaxPages) and returns the text
// fragments in drawing order, tagged with their 1-based page number.
func Extract(r io.ReaderAt, size int64, cfg types.ExtractConfig) ([]types.TextItem, error) {
	reader, err := openReader(r, size)
	if err != nil {
		return nil, err
	}

	n := reader.NumPage()
	if cfg.MaxPages > 0 && cfg.MaxPages < n {
		n = cfg.MaxPages
	}

	var items []types.TextItem
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		glyphs, err := pageGlyphs(page)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i, err)
		}
		items = append(items, mergeGlyphs(glyphs, i, cfg)...)
	}

	if len(items) == 0 {
		return nil, ErrNoText
	}
	return items, nil
}

// openReader wraps lpdf.NewReader, which panics on some malformed inputs.
func openReader(r io.ReaderAt, size int64) (reader *lpdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			reader, err = nil, fmt.Errorf("%w: %v", ErrInvalidPDF, p)
		}
	}()
	reader, err = lpdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return reader, nil
}

func pageGlyphs(p lpdf.Page) (glyphs []lpdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()
	return p.Content().Text, nil
}

// fragment accumulates glyphs that read as one run of text.
type fragment struct {
	b        strings.Builder
	x, y     float64
	size     float64
	started  bool
	lastX    float64 // X of the previous glyph
	end      float64 // right edge of the previous glyph
	inkEnd   float64 // right edge of the last non-space glyph
	trailing bool    // previous glyph was whitespace
}

func (f *fragment) accepts(g lpdf.Text, maxGap float64) bool {
	if !f.started {
		return false
	}
	if math.Abs(g.Y-f.y) > baselineSlack {
		return false
	}
	if math.Abs(g.FontSize-f.size) > baselineSlack {
		return false
	}
	if g.X < f.lastX {
		return false
	}
	return g.X-f.end <= maxGap
}

func (f *fragment) add(g lpdf.Text, spaceRatio float64) {
	space := isBlank(g.S)
	if !f.started {
		f.x, f.y, f.size = g.X, g.Y, g.FontSize
		f.started = true
	} else if gap := g.X - f.end; gap > spaceRatio*f.size && !f.trailing && !space {
		f.b.WriteByte(' ')
	}
	f.b.WriteString(g.S)
	f.lastX = g.X
	f.end = g.X + g.W
	if !space {
		f.inkEnd = f.end
	}
	f.trailing = space
}

func (f *fragment) item(page int) (types.TextItem, bool) {
	text := strings.TrimSpace(f.b.String())
	if text == "" {
		return types.TextItem{}, false
	}
	return types.TextItem{
		Text:     text,
		X:        f.x,
		Y:        f.y,
		Width:    f.inkEnd - f.x,
		FontSize: f.size,
		Page:     page,
	}, true
}

// mergeGlyphs joins consecutive glyphs on one baseline into fragments. A
// fragment ends when the baseline or font size changes, the pen moves
// backwards, or the horizontal gap exceeds cfg.FragmentGap. Leading
// whitespace glyphs never start a fragment.
func mergeGlyphs(glyphs []lpdf.Text, page int, cfg types.ExtractConfig) []types.TextItem {
	maxGap := cfg.FragmentGap
	if maxGap <= 0 {
		maxGap = defaultFragmentGap
	}
	spaceRatio := cfg.SpaceRatio
	if spaceRatio <= 0 {
		spaceRatio = defaultSpaceRatio
	}

	var items []types.TextItem
	cur := &fragment{}
	flush := func() {
		if it, ok := cur.item(page); ok {
			items = append(items, it)
		}
		cur = &fragment{}
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if !cur.accepts(g, maxGap) {
			flush()
			if isBlank(g.S) {
				continue
			}
		}
		cur.add(g, spaceRatio)
	}
	flush()
	return items
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
