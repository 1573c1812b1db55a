// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sathanbabu-png/PDFConverter/internal/analyze"
	"github.com/sathanbabu-png/PDFConverter/internal/pipeline"
	"github.com/sathanbabu-png/PDFConverter/internal/server"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the PDF upload form and conversion API",
	Long: `Serve starts an HTTP server with a browser upload form at / and a
multipart conversion endpoint at /api/convert. Conversion history is
available at /api/history. The server shuts down gracefully on SIGINT or
SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v, _ := cmd.Flags().GetString("analyzer"); v != "" {
		cfg.Analyzer = types.AnalyzerKind(v)
	}

	dev, _ := cmd.Flags().GetBool("dev")
	logger, err := newLogger(dev)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := analyze.New(cfg)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(a, store)
	p.OnRecordError = func(err error) { logger.Error("recording history", zap.Error(err)) }

	logger.Info("starting pdfconverter",
		zap.String("version", version),
		zap.String("analyzer", a.Name()),
		zap.String("data_dir", cfg.DataDir),
		zap.Int64("max_upload_mb", cfg.Server.MaxUploadMB))

	srv := server.New(p, store, cfg.Server, logger)
	if err := srv.ListenAndServe(cmd.Context(), cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().String("analyzer", "", "analyzer: local or gemini (default from config)")
	serveCmd.Flags().Bool("dev", false, "human-readable development logging")

	rootCmd.AddCommand(serveCmd)
}
