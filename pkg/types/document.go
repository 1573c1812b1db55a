// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the PDF conversion
// pipeline: output formats, positioned text items, extracted content,
// processing steps, history records, and stage configuration.
package types

import (
	"fmt"
	"strings"
)

// OutputFormat selects the kind of file the converter produces.
type OutputFormat string

const (
	FormatWord  OutputFormat = "word"
	FormatExcel OutputFormat = "excel"
)

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseOutputFormat accepts "word", "excel", "docx", or "xlsx" in any case.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "docx", "doc":
		return FormatWord, nil
	case "excel", "xlsx", "xls":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("unknown output format %q (want word or excel)", s)
}

// Extension returns the file extension, including the dot.
func (f OutputFormat) Extension() string {
	if f == FormatExcel {
		return ".xlsx"
	}
	return ".docx"
}

// MimeType returns the OOXML content type for the format.
func (f OutputFormat) MimeType() string {
	if f == FormatExcel {
		return mimeXlsx
	}
	return mimeDocx
}

// Valid reports whether f is a known format.
func (f OutputFormat) Valid() bool {
	return f == FormatWord || f == FormatExcel
}

// TextItem is a run of text placed on a PDF page. Coordinates are in PDF
// user space: the origin is the bottom-left corner and Y grows upward.
type TextItem struct {
	Text     string  `json:"text" yaml:"text"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Width    float64 `json:"width" yaml:"width"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	Page     int     `json:"page" yaml:"page"`
}

// End returns the X coordinate where the item stops.
func (t TextItem) End() float64 {
	return t.X + t.Width
}

// ExtractedData is what an analyzer produces for export. Word output reads
// Content (Markdown-like lines); Excel output reads Tables.
type ExtractedData struct {
	Title   string     `json:"title,omitempty" yaml:"title,omitempty"`
	Content string     `json:"content,omitempty" yaml:"content,omitempty"`
	Tables  [][]string `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// FileInfo describes an uploaded or local input file.
type FileInfo struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
	Type string `json:"type" yaml:"type"`
}

// MimePDF is the content type every accepted input must carry.
const MimePDF = "application/pdf"

// IsPDF reports whether the file was identified as a PDF.
func (f FileInfo) IsPDF() bool {
	return f.Type == MimePDF
}

// SizeMB formats the size in megabytes with two decimals (e.g. "1.25 MB").
func (f FileInfo) SizeMB() string {
	return fmt.Sprintf("%.2f MB", float64(f.Size)/1024/1024)
}
