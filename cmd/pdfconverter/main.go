// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfconverter CLI. It converts PDFs
// to Word or Excel files locally, serves the same conversion over HTTP, and
// reads the conversion history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sathanbabu-png/PDFConverter/internal/history"
	"github.com/sathanbabu-png/PDFConverter/internal/secrets"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the pdfconverter CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfconverter",
	Short: "Convert PDF files to Word or Excel documents",
	Long: `pdfconverter turns PDF documents into editable Word (.docx) or Excel (.xlsx)
files. By default the text layer is read locally and grouped into rows and
columns by position; nothing leaves the machine. The optional gemini analyzer
sends rendered page images to the Gemini API for a structured reconstruction.

Use convert for files on disk, serve for the browser upload form, inspect to
see how a PDF's text is laid out, and history to review past conversions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfconverter.yaml or ~/.config/pdfconverter/pdfconverter.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the conversion history database")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfconverter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfconverter"))
		}
	}

	setDefaults(viper.GetViper(), types.DefaultConfig())

	viper.SetEnvPrefix("PDFCONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables are honoured by Unmarshal.
func setDefaults(v *viper.Viper, d types.ConverterConfig) {
	v.SetDefault("analyzer", string(d.Analyzer))
	v.SetDefault("data_dir", d.DataDir)

	v.SetDefault("extract.fragment_gap", d.Extract.FragmentGap)
	v.SetDefault("extract.space_ratio", d.Extract.SpaceRatio)
	v.SetDefault("extract.max_pages", d.Extract.MaxPages)

	v.SetDefault("layout.row_tolerance", d.Layout.RowTolerance)
	v.SetDefault("layout.cell_gap", d.Layout.CellGap)
	v.SetDefault("layout.detect_headings", d.Layout.DetectHeadings)

	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.max_pages", d.AI.MaxPages)
	v.SetDefault("ai.scale", d.AI.Scale)
	v.SetDefault("ai.jpeg_quality", d.AI.JPEGQuality)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}

// loadConfig decodes the merged configuration (defaults, file, environment,
// bound flags) and fills the Gemini key from secrets when it is unset.
func loadConfig(v *viper.Viper) (types.ConverterConfig, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.AI.APIKey = secrets.Resolve(cfg.AI.APIKey, loadedSecrets, secrets.GeminiAPIKey, secrets.GeminiEnv...)
	return cfg, nil
}

// openHistory opens the history store under cfg.DataDir.
func openHistory(cfg types.ConverterConfig) (*history.Store, error) {
	return history.Open(cfg.DataDir)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
