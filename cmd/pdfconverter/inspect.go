// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/sathanbabu-png/PDFConverter/internal/layout"
	"github.com/sathanbabu-png/PDFConverter/internal/pdftext"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Show the positioned text rows of a PDF",
	Long: `Inspect validates a PDF, extracts its text items with coordinates, and
prints the rows the layout heuristic builds from them. Use it to tune
layout.row_tolerance and layout.cell_gap for a document.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// inspectRow is one layout row as printed by inspect.
type inspectRow struct {
	Page  int              `json:"page" yaml:"page"`
	Y     float64          `json:"y" yaml:"y"`
	Cells []string         `json:"cells" yaml:"cells"`
	Items []types.TextItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// inspectReport is the full inspect output.
type inspectReport struct {
	File      string       `json:"file" yaml:"file"`
	Size      string       `json:"size" yaml:"size"`
	Pages     int          `json:"pages" yaml:"pages"`
	Encrypted bool         `json:"encrypted" yaml:"encrypted"`
	Items     int          `json:"items" yaml:"items"`
	Rows      []inspectRow `json:"rows" yaml:"rows"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	info, err := pdftext.ProbeBytes(data)
	if err != nil {
		return err
	}
	items, err := pdftext.ExtractBytes(data, cfg.Extract)
	if err != nil {
		return err
	}

	withItems, _ := cmd.Flags().GetBool("items")
	report := inspectReport{
		File:      filepath.Base(path),
		Size:      types.FileInfo{Size: int64(len(data))}.SizeMB(),
		Pages:     info.Pages,
		Encrypted: info.Encrypted,
		Items:     len(items),
	}
	for _, row := range layout.GroupRows(items, cfg.Layout) {
		r := inspectRow{Page: row.Page, Y: row.Y, Cells: row.Cells(cfg.Layout.CellGap)}
		if withItems {
			r.Items = row.Items
		}
		report.Rows = append(report.Rows, r)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return writeReport(cmd.OutOrStdout(), report, asJSON)
}

func writeReport(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func init() {
	inspectCmd.Flags().Bool("json", false, "print JSON instead of YAML")
	inspectCmd.Flags().Bool("items", false, "include the text items of every row")

	rootCmd.AddCommand(inspectCmd)
}
