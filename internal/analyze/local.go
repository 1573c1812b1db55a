// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"

	"github.com/sathanbabu-png/PDFConverter/internal/layout"
	"github.com/sathanbabu-png/PDFConverter/internal/pdftext"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// Local extracts text in-process and approximates tables with the
// row-bucketing heuristic.
type Local struct {
	Extract types.ExtractConfig
	Layout  types.LayoutConfig
}

func (l *Local) Name() string  { return string(types.AnalyzerLocal) }
func (l *Local) Label() string { return "Local data extraction" }

// Analyze fills Content for Word output and Tables for Excel output.
func (l *Local) Analyze(ctx context.Context, pdf []byte, format types.OutputFormat) (types.ExtractedData, error) {
	if err := ctx.Err(); err != nil {
		return types.ExtractedData{}, err
	}

	items, err := pdftext.ExtractBytes(pdf, l.Extract)
	if err != nil {
		return types.ExtractedData{}, err
	}

	rows := layout.GroupRows(items, l.Layout)
	text := layout.Text(rows, l.Layout)

	data := types.ExtractedData{Title: layout.Title(text)}
	if format == types.FormatExcel {
		data.Tables = layout.Table(rows, l.Layout)
	} else {
		data.Content = text
	}
	return data, nil
}
