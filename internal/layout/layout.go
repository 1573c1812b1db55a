// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout turns positioned text items into rows and columns.
//
// Items are bucketed by their rounded Y coordinate; each bucket is a row.
// Rows read top to bottom (PDF Y grows upward, so higher Y comes first) and
// items within a row read left to right by X. Neighbouring buckets closer
// than the configured tolerance collapse into one row so that superscripts
// and slightly misaligned cells stay on their line.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// Row is one line of text on a page.
type Row struct {
	Page  int              `json:"page" yaml:"page"`
	Y     float64          `json:"y" yaml:"y"`
	Items []types.TextItem `json:"items" yaml:"items"`
}

// GroupRows buckets items into rows, ordered by page, then top to bottom.
func GroupRows(items []types.TextItem, cfg types.LayoutConfig) []Row {
	if len(items) == 0 {
		return nil
	}
	tolerance := math.Max(cfg.RowTolerance, 0)

	byPage := make(map[int][]types.TextItem)
	var pages []int
	for _, it := range items {
		if _, ok := byPage[it.Page]; !ok {
			pages = append(pages, it.Page)
		}
		byPage[it.Page] = append(byPage[it.Page], it)
	}
	sort.Ints(pages)

	var rows []Row
	for _, page := range pages {
		rows = append(rows, pageRows(page, byPage[page], tolerance)...)
	}
	return rows
}

func pageRows(page int, items []types.TextItem, tolerance float64) []Row {
	buckets := make(map[float64][]types.TextItem)
	var keys []float64
	for _, it := range items {
		k := math.Round(it.Y)
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], it)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(keys)))

	var rows []Row
	prev := math.Inf(1)
	for _, k := range keys {
		if len(rows) > 0 && prev-k <= tolerance {
			last := &rows[len(rows)-1]
			last.Items = append(last.Items, buckets[k]...)
		} else {
			rows = append(rows, Row{Page: page, Y: k, Items: append([]types.TextItem(nil), buckets[k]...)})
		}
		prev = k
	}

	for i := range rows {
		sort.SliceStable(rows[i].Items, func(a, b int) bool {
			return rows[i].Items[a].X < rows[i].Items[b].X
		})
	}
	return rows
}

// Cells returns the row's cell texts. Items closer than cellGap are joined
// with a single space; a non-positive cellGap makes every item its own cell.
func (r Row) Cells(cellGap float64) []string {
	var cells []string
	var prevEnd float64
	for i, it := range r.Items {
		if i > 0 && cellGap > 0 && it.X-prevEnd < cellGap {
			cells[len(cells)-1] += " " + it.Text
		} else {
			cells = append(cells, it.Text)
		}
		prevEnd = it.End()
	}
	return cells
}

// Line returns the row's items joined by single spaces.
func (r Row) Line() string {
	parts := make([]string, len(r.Items))
	for i, it := range r.Items {
		parts[i] = it.Text
	}
	return strings.Join(parts, " ")
}

// FontSize returns the largest font size used in the row.
func (r Row) FontSize() float64 {
	var size float64
	for _, it := range r.Items {
		size = math.Max(size, it.FontSize)
	}
	return size
}

// Table returns the cells of every non-empty row.
func Table(rows []Row, cfg types.LayoutConfig) [][]string {
	var table [][]string
	for _, r := range rows {
		cells := r.Cells(cfg.CellGap)
		if len(cells) == 0 {
			continue
		}
		table = append(table, cells)
	}
	return table
}

// Heading thresholds relative to the median font size.
const (
	heading1Ratio = 1.6
	heading2Ratio = 1.3
	heading3Ratio = 1.15
)

// Text renders rows as lines, one per row, with a blank line between pages.
// When cfg.DetectHeadings is set, rows in a large font gain "#", "##", or
// "###" prefixes.
func Text(rows []Row, cfg types.LayoutConfig) string {
	median := medianFontSize(rows)

	var lines []string
	for i, r := range rows {
		if i > 0 && r.Page != rows[i-1].Page {
			lines = append(lines, "")
		}
		line := r.Line()
		if cfg.DetectHeadings && median > 0 {
			line = headingPrefix(r.FontSize()/median) + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func headingPrefix(ratio float64) string {
	switch {
	case ratio >= heading1Ratio:
		return "# "
	case ratio >= heading2Ratio:
		return "## "
	case ratio >= heading3Ratio:
		return "### "
	}
	return ""
}

func medianFontSize(rows []Row) float64 {
	var sizes []float64
	for _, r := range rows {
		for _, it := range r.Items {
			if it.FontSize > 0 {
				sizes = append(sizes, it.FontSize)
			}
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		return (sizes[mid-1] + sizes[mid]) / 2
	}
	return sizes[mid]
}

// Title returns the first non-empty line of text with any heading marker
// removed.
func Title(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			return line
		}
	}
	return ""
}
