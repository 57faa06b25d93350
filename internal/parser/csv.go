package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".csv", ".tsv", ".txt")
}

func (csvLoader) Load(r io.Reader, opt Options) (analysis.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return analysis.Table{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(data)
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return analysis.Table{}, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return fromRecords(records, opt.MaxRows), nil
}

// sniffDelimiter picks the most frequent of ',', ';' and '\t' in the first line,
// ignoring quoted text. Ties prefer ','.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	counts := map[rune]int{}
	inQuote := false
	for _, c := range string(line) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case !inQuote && (c == ',' || c == ';' || c == '\t'):
			counts[c]++
		}
	}
	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
