// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sathanbabu-png/PDFConverter/internal/history"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past conversions (list, show, export)",
	Long: `History reads the SQLite database of conversion runs kept under
data_dir. Every CLI and server conversion adds a record.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if recs == nil {
			recs = []types.ConversionRecord{}
		}
		return writeReport(cmd.OutOrStdout(), recs, true)
	}
	formatHistory(cmd.OutOrStdout(), recs)
	return nil
}

func formatHistory(w io.Writer, recs []types.ConversionRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-6s  %-9s  %s\n",
		"ID", "Started", "File", "Format", "Status", "Duration")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range recs {
		name := truncate(r.FileName, 30)
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-6s  %-9s  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), name, r.Format, r.Status,
			r.Duration().Round(time.Millisecond))
	}

	fmt.Fprintf(w, "\n%d conversions\n", len(recs))
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one conversion record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	return writeReport(cmd.OutOrStdout(), rec, asJSON)
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversion history to YAML or JSON",
	Long: `Export writes every conversion record to stdout, or to the file given
with --out.`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if out == "" {
		return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := store.Export(cmd.Context(), f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
	return nil
}

// --- shared helpers ---

func historyStore() (*history.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return openHistory(cfg)
}

func init() {
	historyCmd.PersistentFlags().Bool("json", false, "print JSON instead of a table or YAML")

	historyListCmd.Flags().Int("limit", 20, "maximum number of records")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().StringP("out", "o", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
