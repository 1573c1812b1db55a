// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert converts PDF files on disk to Word or Excel files,
// printing one status line per input.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sathanbabu-png/PDFConverter/internal/export"
	"github.com/sathanbabu-png/PDFConverter/internal/pipeline"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// Converter runs one PDF through analysis and generation. *pipeline.Pipeline
// implements it.
type Converter interface {
	Run(ctx context.Context, info types.FileInfo, data []byte, format types.OutputFormat) (pipeline.Result, error)
}

// Status is the outcome of converting one file.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Options controls where and how outputs are written.
type Options struct {
	// OutDir receives the generated files. Empty writes next to each input.
	OutDir string
	Format types.OutputFormat
	// Force overwrites existing outputs instead of skipping them.
	Force bool
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertFile converts the PDF at path and writes the output into
// opts.OutDir. If the output already exists and Force is not set, it skips
// conversion.
func ConvertFile(ctx context.Context, c Converter, path string, opts Options, w io.Writer) Status {
	name := export.FileName(path, opts.Format)
	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}

	outPath, err := safeJoin(outDir, name)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return StatusFailed
	}

	if !opts.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", outPath)
			return StatusSkipped
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return StatusFailed
	}

	info := types.FileInfo{
		Name: filepath.Base(path),
		Size: int64(len(data)),
		Type: pipeline.DetectType(data),
	}
	res, err := c.Run(ctx, info, data, opts.Format)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return StatusFailed
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return StatusFailed
	}
	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s -> %s (%s)\n", path, outPath, info.SizeMB())
	return StatusConverted
}

// ConvertBatch converts every path, printing per-file status to w and
// returning a summary. It stops early when ctx is cancelled.
func ConvertBatch(ctx context.Context, c Converter, paths []string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p, ctx.Err())
			result.Failed++
			continue
		}
		switch ConvertFile(ctx, c, p, opts, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// safeJoin joins dir and name and rejects results outside dir.
func safeJoin(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("output path %q escapes %s", name, dir)
	}
	return p, nil
}
