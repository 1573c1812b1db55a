// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testpdf builds small, well-formed PDF documents in memory for tests.
// Every page uses a single monospaced Type1 font (Courier, 600/1000 em per
// glyph) so glyph positions are predictable: a string drawn at X with size S
// places glyph i at X + i*0.6*S.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

// GlyphWidth is the advance of every glyph in thousandths of an em.
const GlyphWidth = 600

// Text is a string drawn at a baseline position.
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Page is the set of strings drawn on one page.
type Page []Text

// Build returns the bytes of a PDF with one page per argument. A Page with no
// Text produces an empty page.
func Build(pages ...Page) []byte {
	if len(pages) == 0 {
		pages = []Page{{}}
	}

	var objects []string
	// 1: catalog, 2: pages, 3: font; pages and their content streams follow.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		fontObject(),
	)
	for i, p := range pages {
		content := contentStream(p)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = fmt.Sprint(GlyphWidth)
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>"
}

func contentStream(p Page) string {
	var b strings.Builder
	for _, t := range p {
		fmt.Fprintf(&b, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(t.Size), num(t.X), num(t.Y), escape(t.S))
	}
	return b.String()
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", f), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Advance returns the width of s drawn at the given size.
func Advance(s string, size float64) float64 {
	return float64(len(s)) * GlyphWidth / 1000 * size
}
