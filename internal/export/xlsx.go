// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// SheetName is the name of the single worksheet in Excel output.
const SheetName = "Extracted Data"

const (
	minColWidth = 10
	maxColWidth = 60
)

// Excel writes data.Tables as an array of rows starting at A1.
func Excel(data types.ExtractedData, w io.Writer) error {
	if len(data.Tables) == 0 {
		return ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	widths := make(map[int]int)
	for r, row := range data.Tables {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", r+1, err)
		}
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v
			if n := utf8.RuneCountInString(v); n > widths[c] {
				widths[c] = n
			}
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	for c, n := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return fmt.Errorf("addressing column %d: %w", c+1, err)
		}
		if err := f.SetColWidth(SheetName, col, col, colWidth(n)); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if data.Title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: data.Title}); err != nil {
			return fmt.Errorf("setting document properties: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

func colWidth(chars int) float64 {
	w := chars + 2
	if w < minColWidth {
		w = minColWidth
	}
	if w > maxColWidth {
		w = maxColWidth
	}
	return float64(w)
}
