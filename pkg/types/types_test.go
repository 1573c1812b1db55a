// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"word", FormatWord, false},
		{"DOCX", FormatWord, false},
		{" excel ", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{"pptx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, ".docx", FormatWord.Extension())
	assert.Equal(t, ".xlsx", FormatExcel.Extension())
	assert.Contains(t, FormatWord.MimeType(), "wordprocessingml")
	assert.Contains(t, FormatExcel.MimeType(), "spreadsheetml")
	assert.True(t, FormatExcel.Valid())
	assert.False(t, OutputFormat("pdf").Valid())
}

func TestFileInfo(t *testing.T) {
	f := FileInfo{Name: "a.pdf", Size: 1310720, Type: MimePDF}
	assert.True(t, f.IsPDF())
	assert.Equal(t, "1.25 MB", f.SizeMB())
	assert.Equal(t, "0.00 MB", FileInfo{}.SizeMB())
	assert.False(t, FileInfo{Type: "image/png"}.IsPDF())
}

func TestTextItemEnd(t *testing.T) {
	assert.Equal(t, 130.0, TextItem{X: 100, Width: 30}.End())
}

func TestConversionRecordDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := ConversionRecord{StartedAt: start, FinishedAt: start.Add(2 * time.Second)}
	assert.Equal(t, 2*time.Second, r.Duration())
}
