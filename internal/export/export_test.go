// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		original string
		format   types.OutputFormat
		want     string
	}{
		{"report.pdf", types.FormatWord, "report.docx"},
		{"report.pdf", types.FormatExcel, "report.xlsx"},
		{"archive.tar.pdf", types.FormatWord, "archive.tar.docx"},
		{"no-extension", types.FormatExcel, "no-extension.xlsx"},
		{"/uploads/q3 summary.PDF", types.FormatWord, "q3 summary.docx"},
		{".pdf", types.FormatWord, "converted_document.docx"},
		{"", types.FormatExcel, "converted_document.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.original, tt.format))
		})
	}
}

func TestParseBlocks(t *testing.T) {
	content := strings.Join([]string{
		"# Title",
		"## Section",
		"### Sub",
		"plain line",
		"- first",
		"  * second",
		"| Name | Qty |",
		"|------|:---:|",
		"| Apple | 3 |",
		"after table",
	}, "\n")

	blocks := ParseBlocks(content)
	require.Len(t, blocks, 8)

	assert.Equal(t, Block{Kind: BlockHeading, Level: 1, Text: "Title"}, blocks[0])
	assert.Equal(t, Block{Kind: BlockHeading, Level: 2, Text: "Section"}, blocks[1])
	assert.Equal(t, Block{Kind: BlockHeading, Level: 3, Text: "Sub"}, blocks[2])
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "plain line"}, blocks[3])
	assert.Equal(t, Block{Kind: BlockBullet, Text: "first"}, blocks[4])
	assert.Equal(t, Block{Kind: BlockBullet, Text: "second"}, blocks[5])
	assert.Equal(t, BlockTable, blocks[6].Kind)
	assert.Equal(t, [][]string{{"Name", "Qty"}, {"Apple", "3"}}, blocks[6].Rows)
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "after table"}, blocks[7])
}

func TestParseBlocks_HashWithoutSpaceIsParagraph(t *testing.T) {
	blocks := ParseBlocks("#hashtag")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
}

func TestParseSpans(t *testing.T) {
	assert.Equal(t, []Span{{Text: "plain"}}, ParseSpans("plain"))
	assert.Equal(t, []Span{{Text: "a "}, {Text: "bold", Bold: true}, {Text: " b"}}, ParseSpans("a **bold** b"))
	assert.Equal(t, []Span{{Text: "open **marker"}}, ParseSpans("open **marker"))
	assert.Empty(t, ParseSpans(""))
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestWord(t *testing.T) {
	old := docxNow
	docxNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { docxNow = old }()

	data := types.ExtractedData{
		Title:   "Q3 <Report>",
		Content: "# Heading\nBody & **bold** text\n| A | B |\n| 1 | 2 |",
	}

	var buf bytes.Buffer
	require.NoError(t, Word(data, &buf))

	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "word/_rels/document.xml.rels"} {
		assert.NotEmpty(t, readZipPart(t, buf.Bytes(), part))
	}

	doc := readZipPart(t, buf.Bytes(), "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve">Heading</w:t>`)
	assert.Contains(t, doc, `Body &amp; `)
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">bold</w:t>`)
	assert.Contains(t, doc, `<w:tbl>`)
	assert.Equal(t, 2, strings.Count(doc, "<w:tr>"))

	core := readZipPart(t, buf.Bytes(), "docProps/core.xml")
	assert.Contains(t, core, "<dc:title>Q3 &lt;Report&gt;</dc:title>")
	assert.Contains(t, core, "2026-01-02T03:04:05Z")
}

func TestExcel(t *testing.T) {
	data := types.ExtractedData{
		Title:  "Inventory",
		Tables: [][]string{{"Name", "Qty"}, {"A much longer product description", "3"}, {"Pear"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Excel(data, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, data.Tables, rows)

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("A much longer product description")+2), width)

	narrow, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(minColWidth), narrow)
}

func TestExcel_NoTables(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Excel(types.ExtractedData{}, &buf), ErrNoTables)
	assert.Zero(t, buf.Len())
}

func TestWrite_Dispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(types.ExtractedData{Content: "x"}, types.FormatWord, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	assert.Error(t, Write(types.ExtractedData{}, types.OutputFormat("pdf"), &buf))
}
