package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".xlsx")
}

// Load reads the selected sheet: Options.Sheet by name, else Options.SheetIndex
// (1-based), else the first sheet.
func (xlsxLoader) Load(r io.Reader, opt Options) (analysis.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return analysis.Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return analysis.Table{}, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return analysis.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows, opt.MaxRows), nil
}

func pickSheet(sheets []string, opt Options) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if opt.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s", opt.Sheet, strings.Join(sheets, ", "))
	}
	if opt.SheetIndex > 0 {
		if opt.SheetIndex > len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", opt.SheetIndex, len(sheets))
		}
		return sheets[opt.SheetIndex-1], nil
	}
	return sheets[0], nil
}
