// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze produces ExtractedData from PDF bytes. The local analyzer
// reads the text layer in-process; the Gemini analyzer sends rendered page
// images to the Gemini API and parses its structured JSON reply.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sathanbabu-png/PDFConverter/internal/render"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// ErrMissingAPIKey is returned when the Gemini analyzer is selected without
// a key.
var ErrMissingAPIKey = errors.New("gemini analyzer requires an API key (set ai.api_key, .secrets/gemini-api-key, or GEMINI_API_KEY)")

// Analyzer turns a PDF into content ready for export.
type Analyzer interface {
	// Name identifies the analyzer in history records ("local", "gemini").
	Name() string

	// Label is the progress-step label shown while the analyzer runs.
	Label() string

	Analyze(ctx context.Context, pdf []byte, format types.OutputFormat) (types.ExtractedData, error)
}

// New builds the analyzer selected by cfg.Analyzer.
func New(cfg types.ConverterConfig) (Analyzer, error) {
	switch cfg.Analyzer {
	case "", types.AnalyzerLocal:
		return &Local{Extract: cfg.Extract, Layout: cfg.Layout}, nil
	case types.AnalyzerGemini:
		if cfg.AI.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return &Gemini{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			MaxPages:   cfg.AI.MaxPages,
			MaxRetries: cfg.AI.MaxRetries,
			Client:     &http.Client{Timeout: cfg.AI.Timeout},
			Renderer: render.JPEGRenderer{
				Scale:   cfg.AI.Scale,
				Quality: cfg.AI.JPEGQuality,
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown analyzer %q (want local or gemini)", cfg.Analyzer)
}
