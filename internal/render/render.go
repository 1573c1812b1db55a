// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages to JPEG images with MuPDF (go-fitz).
package render

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

const (
	// pointsPerInch is the PDF user-space resolution; Scale multiplies it.
	pointsPerInch = 72.0

	defaultScale   = 1.5
	defaultQuality = 80
)

// JPEGRenderer renders leading pages of a document as JPEG images.
type JPEGRenderer struct {
	// Scale is the zoom factor relative to 72 DPI (1.5 renders at 108 DPI).
	Scale float64
	// Quality is the JPEG encoder quality, 1-100.
	Quality int
}

// Render returns one JPEG per page for the first maxPages pages (all pages
// when maxPages is zero).
func (r JPEGRenderer) Render(pdf []byte, maxPages int) ([][]byte, error) {
	scale := r.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	quality := r.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening PDF for rendering: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	images := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, pointsPerInch*scale)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", i+1, err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}
