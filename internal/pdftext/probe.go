// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a configuration directory under the user's home.
	api.DisableConfigDir()
}

// Info summarizes a validated PDF.
type Info struct {
	Pages     int  `json:"pages" yaml:"pages"`
	Encrypted bool `json:"encrypted" yaml:"encrypted"`
}

// Probe parses and validates the document structure in relaxed mode and
// reports its page count. Structural failures wrap ErrInvalidPDF.
func Probe(rs io.ReadSeeker) (Info, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	return Info{
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}, nil
}

// ProbeBytes is Probe over an in-memory document.
func ProbeBytes(data []byte) (Info, error) {
	return Probe(bytes.NewReader(data))
}
