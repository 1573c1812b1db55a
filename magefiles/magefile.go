// Package main contains Mage build targets for pdfconverter developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/sathanbabu-png/PDFConverter/internal/testpdf"
)

const (
	binDir     = "bin"
	binName    = "pdfconverter"
	cmdPkg     = "./cmd/pdfconverter"
	dataDir    = ".pdfconverter"
	configFile = "pdfconverter.yaml"
	sampleDir  = "testdata"
)

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `# pdfconverter configuration. Environment variables override these
# keys with the PDFCONVERTER_ prefix, e.g. PDFCONVERTER_LAYOUT_CELL_GAP=4.
analyzer: local
data_dir: .pdfconverter
layout:
  row_tolerance: 1
  cell_gap: 0
  detect_headings: true
extract:
  fragment_gap: 3
  max_pages: 0
ai:
  model: gemini-2.0-flash
  max_pages: 5
  max_retries: 3
  timeout: 120s
server:
  addr: ":8080"
  max_upload_mb: 50
`

// Init creates the data directory, .secrets/, and a starter config file.
func Init() error {
	for _, dir := range []string{dataDir, ".secrets"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Serve builds the binary and starts the upload server with development logging.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve", "--dev")
}

// Samples writes small generated PDFs into testdata/ for manual conversion runs.
func Samples() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	samples := map[string][]byte{
		"invoice.pdf": testpdf.Build(testpdf.Page{
			{X: 72, Y: 740, Size: 20, S: "Invoice 2026-001"},
			{X: 72, Y: 700, Size: 10, S: "Item"},
			{X: 300, Y: 700, Size: 10, S: "Qty"},
			{X: 400, Y: 700, Size: 10, S: "Price"},
			{X: 72, Y: 685, Size: 10, S: "Widget"},
			{X: 300, Y: 685, Size: 10, S: "4"},
			{X: 400, Y: 685, Size: 10, S: "12.50"},
			{X: 72, Y: 670, Size: 10, S: "Gadget"},
			{X: 300, Y: 670, Size: 10, S: "1"},
			{X: 400, Y: 670, Size: 10, S: "99.00"},
		}),
		"letter.pdf": testpdf.Build(
			testpdf.Page{
				{X: 72, Y: 740, Size: 18, S: "Quarterly Report"},
				{X: 72, Y: 710, Size: 10, S: "Revenue grew in every region this quarter."},
			},
			testpdf.Page{
				{X: 72, Y: 740, Size: 13, S: "Outlook"},
				{X: 72, Y: 710, Size: 10, S: "We expect steady demand next year."},
			},
		),
	}
	for name, data := range samples {
		path := filepath.Join(sampleDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories Stats does not descend into.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir)
}

// countGoLines walks the tree and counts non-blank lines in production and
// test Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := nonBlankLines(data)
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in the Markdown files of the tree.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(bytes.Fields(data))
		return nil
	})
	return total, err
}

func nonBlankLines(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) > 0 {
			n++
		}
	}
	return n
}
