package synth

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

// WriteCSV writes t with a header line. Missing cells are empty fields and
// values containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, t analysis.Table) error {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(cols))
	for _, r := range t.Rows {
		for i, c := range cols {
			rec[i] = r[c].Raw()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t to a single-sheet workbook. Numbers stay numeric cells.
func WriteXLSX(w io.Writer, t analysis.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	cols := t.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for n, r := range t.Rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			cell := r[c]
			switch cell.Kind {
			case analysis.KindNumber:
				vals[i] = cell.Num
			case analysis.KindMissing:
				vals[i] = nil
			default:
				vals[i] = cell.Raw()
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &vals); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", n+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
