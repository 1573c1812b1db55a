// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sathanbabu-png/PDFConverter/internal/analyze"
	"github.com/sathanbabu-png/PDFConverter/internal/convert"
	"github.com/sathanbabu-png/PDFConverter/internal/pipeline"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf...>",
	Short: "Convert PDF files to Word or Excel",
	Long: `Convert reads each PDF, extracts its content with the configured analyzer,
and writes a .docx (word) or .xlsx (excel) file. Existing outputs are skipped
unless --force is given. Every run is recorded in the conversion history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := types.ParseOutputFormat(formatFlag)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("analyzer"); v != "" {
		cfg.Analyzer = types.AnalyzerKind(v)
	}
	a, err := analyze.New(cfg)
	if err != nil {
		return err
	}

	p := pipeline.New(a, nil)
	if !noHistory {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Recorder = store
		p.OnRecordError = func(err error) { fmt.Fprintf(os.Stderr, "warning: %v\n", err) }
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		p.Observer = stepPrinter(cmd.ErrOrStderr())
	}

	opts := convert.Options{OutDir: outDir, Format: format, Force: force}
	result := convert.ConvertBatch(cmd.Context(), p, args, opts, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// stepPrinter writes each step transition as "  label: status".
func stepPrinter(w io.Writer) func([]types.ProcessingStep) {
	last := map[string]types.StepStatus{}
	return func(steps []types.ProcessingStep) {
		for _, s := range steps {
			if last[s.ID] != s.Status && s.Status != types.StepPending {
				fmt.Fprintf(w, "  %s: %s\n", s.Label, s.Status)
			}
			last[s.ID] = s.Status
		}
	}
}

func init() {
	convertCmd.Flags().StringP("format", "f", "word", "output format: word or excel")
	convertCmd.Flags().StringP("out", "o", "", "output directory (default: next to each input)")
	convertCmd.Flags().Bool("force", false, "overwrite existing outputs")
	convertCmd.Flags().Bool("no-history", false, "do not record conversions in the history database")
	convertCmd.Flags().BoolP("verbose", "v", false, "print step progress")
	convertCmd.Flags().String("analyzer", "", "analyzer: local or gemini (default from config)")

	rootCmd.AddCommand(convertCmd)
}
