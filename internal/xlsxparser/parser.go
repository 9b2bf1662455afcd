// =============================================================================
// Mailchimp CSV Converter - XLSX Parser
// =============================================================================
//
// This module reads attendee exports that were saved as Excel workbooks.
// Only the first sheet is read. It follows the same rules as the CSV parser:
//
//   | Row 1             | header row, names normalized                       |
//   | Row 2..n          | data rows, one record per spreadsheet row          |
//   | Short rows        | trailing cells are missing                         |
//   | Blank rows        | kept as rows whose cells are all missing           |
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/mailchimp-csv/internal/csvparser"
	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens path on fsys and reads its first sheet.
func ParseFile(fsys afero.Fs, path string) (*types.Table, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, &types.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	// Read the workbook up front so a failing file is reported as an IO
	// error instead of a malformed workbook.
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &types.IOError{Op: "read", Path: path, Err: err}
	}

	table, err := Parse(bytes.NewReader(data))
	if err != nil {
		var parseErr *types.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}

	table.SourceFile = path
	return table, nil
}

// Parse reads the first sheet of the workbook in r.
//
// RETURNS:
//   - The parsed table.
//   - An *types.ParseError if r is not a workbook or the sheet is empty.
func Parse(r io.Reader) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &types.ParseError{Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &types.ParseError{Err: ErrNoSheets}
	}
	sheetName := sheets[0]

	// GetRows drops trailing empty cells of every row, which is exactly the
	// missing-cell shape the transformer expects.
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &types.ParseError{Err: fmt.Errorf("failed to read rows of %q: %w", sheetName, err)}
	}

	if len(rows) == 0 {
		return nil, &types.ParseError{Err: csvparser.ErrEmptyFile}
	}

	table := types.NewTable(csvparser.NormalizeHeaders(rows[0]))

	for i := 1; i < len(rows); i++ {
		row, err := parseRow(table.Headers, rows[i])
		if err != nil {
			return nil, &types.ParseError{Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// parseRow maps a sheet row onto headers.
func parseRow(headers []string, cells []string) (types.Row, error) {
	if len(cells) > len(headers) {
		return nil, fmt.Errorf("expected %d cells, saw %d", len(headers), len(cells))
	}

	row := make(types.Row, len(headers))
	for i, value := range cells {
		row[headers[i]] = value
	}
	return row, nil
}
