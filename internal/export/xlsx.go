package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/negocios/consola/internal/reporting"
)

const sheetName = "Informe"

func writeTableXLSX(table reporting.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	width := len(table.Header)

	if err := setRow(f, 1, []string{table.Title}); err != nil {
		return nil, err
	}
	if err := setRow(f, 2, []string{table.Caption}); err != nil {
		return nil, err
	}
	if err := setRow(f, 4, table.Header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := styleRow(f, 4, width, bold); err != nil {
		return nil, err
	}

	row := 5
	for _, cells := range table.Body {
		if err := setRow(f, row, cells); err != nil {
			return nil, err
		}
		row++
	}

	if err := setRow(f, row, footerRow(table.Footer)); err != nil {
		return nil, err
	}
	if table.Footer.Span > 1 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(table.Footer.Span, row)
		if err := f.MergeCell(sheetName, first, last); err != nil {
			return nil, err
		}
	}
	if err := styleRow(f, row, width, bold); err != nil {
		return nil, err
	}

	if table.Notice != "" {
		if err := setRow(f, row+2, []string{table.Notice}); err != nil {
			return nil, err
		}
	}

	if width > 0 {
		lastCol, err := excelize.ColumnNumberToName(width)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	data := make([]any, len(values))
	for i, v := range values {
		data[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &data)
}

func styleRow(f *excelize.File, row, width, style int) error {
	if width == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, first, last, style)
}
