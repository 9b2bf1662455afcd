// =============================================================================
// Mailchimp CSV Converter - CSV Parser Module
// =============================================================================
//
// This module parses the attendee export into a record set. It handles:
//   - A UTF-8 byte order mark (spreadsheet exports usually start with one)
//   - UTF-16 exports, recognized by their byte order mark
//   - A configurable delimiter
//   - Bytes that are not valid UTF-8 (a Latin-1 export) are a parse error
//   - Rows shorter than the header (the trailing cells are missing)
//
// PARSING RULES:
//   - The first record is the header row
//   - Header names are trimmed; empty names become Column_N
//   - Repeated header names get a numeric suffix (Email, Email.1, ...)
//   - Cell values are kept exactly as written
//   - A row with more cells than the header is a parse error
//   - A file with no records at all is a parse error
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/mailchimp-csv/internal/config"
	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned when the input holds no header row.
var ErrEmptyFile = errors.New("file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens path on fsys and parses it.
//
// PARAMETERS:
//   - fsys: The filesystem to read from.
//   - path: The path to the CSV file.
//   - settings: The CSV parsing settings from the configuration.
//
// RETURNS:
//   - The parsed table, with SourceFile set to path.
//   - An *types.IOError if the file cannot be opened or read, or an
//     *types.ParseError if its content is not a table.
func ParseFile(fsys afero.Fs, path string, settings config.CSVSettings) (*types.Table, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, &types.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	table, err := Parse(file, settings)
	if err != nil {
		var parseErr *types.ParseError
		var ioErr *types.IOError
		switch {
		case errors.As(err, &parseErr):
			parseErr.Path = path
		case errors.As(err, &ioErr):
			ioErr.Path = path
		}
		return nil, err
	}

	table.SourceFile = path
	return table, nil
}

// Parse reads CSV data from r and returns the record set.
//
// PARSING PROCESS:
//   1. Decode the byte stream, honoring a leading byte order mark
//   2. Configure the CSV reader with the configured delimiter
//   3. Read the header row and normalize the names
//   4. Read every data row into a Row keyed by header
func Parse(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	// BOMOverride strips a UTF-8 BOM and switches to UTF-16 when the input
	// starts with a UTF-16 BOM. Input without a BOM must be valid UTF-8.
	decoded := transform.NewReader(r, unicode.BOMOverride(encoding.UTF8Validator))

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, &types.ParseError{Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, readError("header", err)
	}

	table := types.NewTable(NormalizeHeaders(header))

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError("row", err)
		}

		row, err := buildRow(table.Headers, record)
		if err != nil {
			line, _ := csvReader.FieldPos(0)
			return nil, &types.ParseError{Err: fmt.Errorf("line %d: %w", line, err)}
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// readError classifies a failed Read. Malformed CSV and invalid UTF-8 are
// problems with the content; anything else came from the underlying reader.
func readError(what string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) || errors.Is(err, encoding.ErrInvalidUTF8) {
		return &types.ParseError{Err: fmt.Errorf("failed to read %s: %w", what, err)}
	}
	return &types.IOError{Op: "read", Err: err}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = settings.Comma()

	// Rows may be shorter than the header; length is checked in buildRow.
	reader.FieldsPerRecord = -1

	// Exports from event platforms occasionally carry stray quotes in
	// free-text fields.
	reader.LazyQuotes = true

	reader.ReuseRecord = false
}

// buildRow maps record onto headers. Cells past the end of a short record
// are left out of the row, which marks them missing.
func buildRow(headers []string, record []string) (types.Row, error) {
	if len(record) > len(headers) {
		return nil, fmt.Errorf("expected %d fields, saw %d", len(headers), len(record))
	}

	row := make(types.Row, len(headers))
	for i, value := range record {
		row[headers[i]] = value
	}
	return row, nil
}
