// Package parser loads tabular files into analysis tables.
package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t' from the header line.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; SheetIndex by 1-based position.
	Sheet      string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Loader reads one tabular format.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, opt Options) (analysis.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// ErrTooLarge indicates a file above the size limit.
var ErrTooLarge = errors.New("file too large")

// MaxFileSize is the default upload limit for tabular files.
const MaxFileSize int64 = 50 << 20

// Extensions lists the accepted file extensions.
var Extensions = []string{".csv", ".tsv", ".txt", ".xlsx", ".json"}

// Load selects a loader based on the file extension and reads the whole table.
func Load(path string, opt Options) (analysis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return analysis.Table{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return LoadReader(path, f, opt)
}

// LoadReader reads an already-open stream; name only selects the format.
func LoadReader(name string, r io.Reader, opt Options) (analysis.Table, error) {
	for _, l := range registry {
		if l.CanLoad(name) {
			t, err := l.Load(r, opt)
			if err != nil {
				return analysis.Table{}, fmt.Errorf("load %s: %w", filepath.Base(name), err)
			}
			return t, nil
		}
	}
	return analysis.Table{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
}

// Validate checks the extension and size of an upload before it is read.
func Validate(path string, size int64) error {
	ext := strings.ToLower(filepath.Ext(path))
	ok := false
	for _, e := range Extensions {
		if e == ext {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupported, ext, strings.Join(Extensions, ", "))
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, FormatBytes(size), FormatBytes(MaxFileSize))
	}
	return nil
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + units[i]
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// normalizeHeader trims names, names blank columns coluna_N and suffixes
// duplicates with _2, _3, ...
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if h == "" {
			h = fmt.Sprintf("coluna_%d", i+1)
		}
		out[i] = uniqueName(h, seen)
	}
	return out
}

func uniqueName(h string, seen map[string]int) string {
	seen[h]++
	if seen[h] == 1 {
		return h
	}
	for {
		cand := fmt.Sprintf("%s_%d", h, seen[h])
		if _, taken := seen[cand]; !taken {
			seen[cand] = 1
			return cand
		}
		seen[h]++
	}
}

// fromRecords builds a table from a header record and string records. Rows
// whose fields are all blank are skipped; short rows are padded with Missing
// and extra fields get generated column names.
func fromRecords(records [][]string, maxRows int) analysis.Table {
	if len(records) == 0 {
		return analysis.Table{}
	}
	header := normalizeHeader(records[0])
	seen := make(map[string]int, len(header))
	for _, h := range header {
		seen[h] = 1
	}
	t := analysis.Table{Header: header}
	for _, rec := range records[1:] {
		if maxRows > 0 && len(t.Rows) >= maxRows {
			break
		}
		if blankRecord(rec) {
			continue
		}
		row := make(analysis.Row, len(t.Header))
		for i := range t.Header {
			row[t.Header[i]] = analysis.Missing()
		}
		for i, v := range rec {
			if i >= len(t.Header) {
				t.Header = append(t.Header, uniqueName(fmt.Sprintf("coluna_%d", i+1), seen))
			}
			row[t.Header[i]] = analysis.Text(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
