// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes ExtractedData into downloadable Word (.docx) and
// Excel (.xlsx) files.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// ErrNoTables is returned when Excel output is requested but no rows were
// extracted.
var ErrNoTables = errors.New("no tabular data to export")

// fallbackBase names the output when the input name has no usable base.
const fallbackBase = "converted_document"

var lastExt = regexp.MustCompile(`\.[^/.]+$`)

// FileName derives the download name from the original file name by
// replacing its last extension with the format's extension.
func FileName(original string, format types.OutputFormat) string {
	base := lastExt.ReplaceAllString(filepath.Base(original), "")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = fallbackBase
	}
	return base + format.Extension()
}

// Write serializes data in the requested format.
func Write(data types.ExtractedData, format types.OutputFormat, w io.Writer) error {
	switch format {
	case types.FormatWord:
		return Word(data, w)
	case types.FormatExcel:
		return Excel(data, w)
	}
	return fmt.Errorf("unsupported output format %q", format)
}
