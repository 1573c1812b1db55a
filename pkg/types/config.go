// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalyzerKind selects how ExtractedData is produced from a PDF.
type AnalyzerKind string

const (
	// AnalyzerLocal extracts text in-process. Nothing leaves the machine.
	AnalyzerLocal AnalyzerKind = "local"

	// AnalyzerGemini sends rendered page images to the Gemini API.
	AnalyzerGemini AnalyzerKind = "gemini"
)

// ExtractConfig holds settings for pulling positioned text out of a PDF.
type ExtractConfig struct {
	// FragmentGap is the largest horizontal gap, in points, between two glyphs
	// that still belong to the same text fragment (default 3).
	FragmentGap float64 `json:"fragment_gap" yaml:"fragment_gap" mapstructure:"fragment_gap"`

	// SpaceRatio is the gap, as a fraction of the font size, above which a
	// space is inserted between glyphs of one fragment (default 0.15).
	SpaceRatio float64 `json:"space_ratio" yaml:"space_ratio" mapstructure:"space_ratio"`

	// MaxPages limits extraction to the first N pages. Zero means all pages.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// LayoutConfig holds settings for the row-bucketing heuristic.
type LayoutConfig struct {
	// RowTolerance merges rounded-Y buckets that are at most this far apart
	// (default 1).
	RowTolerance float64 `json:"row_tolerance" yaml:"row_tolerance" mapstructure:"row_tolerance"`

	// CellGap joins neighbouring items of a row into one cell when the gap
	// between them is smaller than this. Zero keeps every item in its own cell.
	CellGap float64 `json:"cell_gap" yaml:"cell_gap" mapstructure:"cell_gap"`

	// DetectHeadings prefixes rows set in a large font with Markdown heading
	// markers in Word output.
	DetectHeadings bool `json:"detect_headings" yaml:"detect_headings" mapstructure:"detect_headings"`
}

// AIConfig holds settings for the Gemini analyzer.
type AIConfig struct {
	// Model is the Gemini model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the Gemini API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxPages is the number of leading pages rendered and sent (default 5).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// Scale is the render scale relative to 72 DPI (default 1.5).
	Scale float64 `json:"scale" yaml:"scale" mapstructure:"scale"`

	// JPEGQuality is the encoder quality for page images (default 80).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds a single API request (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig holds settings for the HTTP upload service.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadMB caps the accepted upload size (default 50).
	MaxUploadMB int64 `json:"max_upload_mb" yaml:"max_upload_mb" mapstructure:"max_upload_mb"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ConverterConfig groups all stage configurations.
type ConverterConfig struct {
	Analyzer AnalyzerKind  `json:"analyzer" yaml:"analyzer" mapstructure:"analyzer"`
	Extract  ExtractConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	Layout   LayoutConfig  `json:"layout" yaml:"layout" mapstructure:"layout"`
	AI       AIConfig      `json:"ai" yaml:"ai" mapstructure:"ai"`
	Server   ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`

	// DataDir holds the conversion history database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() ConverterConfig {
	return ConverterConfig{
		Analyzer: AnalyzerLocal,
		Extract: ExtractConfig{
			FragmentGap: 3,
			SpaceRatio:  0.15,
		},
		Layout: LayoutConfig{
			RowTolerance:   1,
			DetectHeadings: true,
		},
		AI: AIConfig{
			Model:       "gemini-2.0-flash",
			MaxPages:    5,
			Scale:       1.5,
			JPEGQuality: 80,
			MaxRetries:  3,
			Timeout:     120 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadMB:     50,
			ShutdownTimeout: 10 * time.Second,
		},
		DataDir: ".pdfconverter",
	}
}
