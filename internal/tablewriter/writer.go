// =============================================================================
// Mailchimp CSV Converter - Table Writer Module
// =============================================================================
//
// This module serializes a transformed record set into the import file.
//
// SUPPORTED FORMATS:
//   csv   comma separated, the format Mailchimp's audience import expects
//   tsv   tab separated
//   xlsx  single sheet Excel workbook
//
// OUTPUT LAYOUT:
//   Row 1 is the header row in table order. Each following row is one record.
//   With IncludeIndex, a leading column with an empty header holds the
//   0-based source row number:
//
//     ,Extra,First Name,Last Name
//     0,1,Jane,Doe
//
// =============================================================================

package tablewriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options contains options for serialization.
type Options struct {
	// IncludeIndex adds the leading row index column.
	// Default: false
	IncludeIndex bool

	// SheetName names the worksheet of xlsx output.
	// Default: "Sheet1"
	SheetName string
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{
		IncludeIndex: false,
		SheetName:    "Sheet1",
	}
}

// Supported reports whether a serializer exists for format.
func Supported(format string) bool {
	switch normalize(format) {
	case "csv", "tsv", "xlsx":
		return true
	default:
		return false
	}
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

// =============================================================================
// WRITE FUNCTIONS
// =============================================================================

// Write serializes t to w in the given format.
//
// RETURNS:
//   - types.ErrUnsupportedFormat (wrapped) for unknown formats.
//   - Any error from the underlying writer.
func Write(w io.Writer, t *types.Table, format string, opts Options) error {
	switch normalize(format) {
	case "csv":
		return writeDelimited(w, t, ',', opts)
	case "tsv":
		return writeDelimited(w, t, '\t', opts)
	case "xlsx":
		return writeXLSX(w, t, opts)
	default:
		return fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
}

// records returns the header row followed by the data rows, with the index
// column prepended when requested.
func records(t *types.Table, opts Options) [][]string {
	out := make([][]string, 0, len(t.Rows)+1)

	header := t.Headers
	if opts.IncludeIndex {
		header = append([]string{""}, t.Headers...)
	}
	out = append(out, header)

	for i := range t.Rows {
		values := t.Values(i)
		if opts.IncludeIndex {
			values = append([]string{strconv.Itoa(i)}, values...)
		}
		out = append(out, values)
	}

	return out
}

func writeDelimited(w io.Writer, t *types.Table, comma rune, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.WriteAll(records(t, opts)); err != nil {
		return fmt.Errorf("failed to write delimited output: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, t *types.Table, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if opts.SheetName != "" && opts.SheetName != sheet {
		if err := f.SetSheetName(sheet, opts.SheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = opts.SheetName
	}

	for i, record := range records(t, opts) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}

		// SetSheetRow needs a pointer to a slice; cells are written as text so
		// values like ZIP codes keep their leading zeros.
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
