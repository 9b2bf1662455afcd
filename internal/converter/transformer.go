// =============================================================================
// Mailchimp CSV Converter - Transformation Engine
// =============================================================================
//
// This module maps an attendee export to the Mailchimp import layout:
//
//   1. Split Name into First Name and Last Name at the first space
//   2. Fill every missing cell with an empty string
//   3. Drop the columns Mailchimp has no use for
//
// The mapping is fixed. Columns not listed in DroppedColumns pass through
// unchanged and in their original order; the two name columns go last.
//
// EXAMPLE:
//   Input:  Name,Created At,Status,Location,Team Name,Project Submitted,Extra
//           Jane Doe,x,y,z,t,p,1
//   Output: Extra,First Name,Last Name
//           1,Jane,Doe
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/mailchimp-csv/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

const (
	// NameColumn holds the attendee's full name.
	NameColumn = "Name"

	// FirstNameColumn and LastNameColumn are derived from NameColumn.
	FirstNameColumn = "First Name"
	LastNameColumn  = "Last Name"
)

// DroppedColumns are removed from every export. NameColumn is read before
// it is dropped.
var DroppedColumns = []string{
	"Created At",
	"Status",
	NameColumn,
	"Location",
	"Team Name",
	"Project Submitted",
}

// =============================================================================
// TRANSFORMATION RESULT
// =============================================================================

// TransformStats describes what a transformation did.
type TransformStats struct {
	// Rows is the number of rows transformed.
	Rows int

	// MissingNames counts rows whose Name cell was missing.
	MissingNames int

	// FilledCells counts missing cells that were filled with "".
	FilledCells int

	// DroppedPresent lists the dropped columns that existed in the input.
	DroppedPresent []string

	// DroppedAbsent lists the dropped columns the input did not have.
	DroppedAbsent []string
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform maps the attendee export in to the Mailchimp layout.
//
// RETURNS:
//   - A new table; in is not modified.
//   - A *types.SchemaError if in has no Name column.
//
// A row with a missing Name cell gets empty First Name and Last Name.
// Dropped columns that the input does not have are ignored.
func Transform(in *types.Table) (*types.Table, error) {
	out, _, err := TransformWithStats(in)
	return out, err
}

// TransformWithStats is Transform that also reports statistics.
func TransformWithStats(in *types.Table) (*types.Table, TransformStats, error) {
	stats := TransformStats{}

	if !in.HasColumn(NameColumn) {
		return nil, stats, &types.SchemaError{Column: NameColumn}
	}

	headers, present, absent := outputHeaders(in.Headers)
	stats.DroppedPresent = present
	stats.DroppedAbsent = absent

	out := types.NewTable(headers)
	out.SourceFile = in.SourceFile
	out.Rows = make([]types.Row, 0, len(in.Rows))

	for _, src := range in.Rows {
		row := make(types.Row, len(headers))

		for _, h := range headers {
			value, ok := src.Lookup(h)
			if !ok && h != FirstNameColumn && h != LastNameColumn {
				stats.FilledCells++
			}
			row[h] = value
		}

		name, ok := src.Lookup(NameColumn)
		if !ok {
			stats.MissingNames++
		}
		row[FirstNameColumn], row[LastNameColumn] = SplitName(name)

		out.Rows = append(out.Rows, row)
	}

	stats.Rows = len(out.Rows)
	return out, stats, nil
}

// SplitName splits a full name at the first space.
//
// EXAMPLES:
//   "Jane Doe"          -> "Jane", "Doe"
//   "Mary Jane Watson"  -> "Mary", "Jane Watson"
//   "Madonna"           -> "Madonna", ""
//   ""                  -> "", ""
func SplitName(full string) (first, last string) {
	first, last, _ = strings.Cut(full, " ")
	return first, last
}

// outputHeaders computes the output column order and reports which dropped
// columns were present. An existing First Name or Last Name column keeps its
// position; otherwise the column is appended.
func outputHeaders(in []string) (headers, present, absent []string) {
	drop := make(map[string]bool, len(DroppedColumns))
	for _, c := range DroppedColumns {
		drop[c] = true
	}

	seen := make(map[string]bool, len(in))
	headers = make([]string, 0, len(in)+2)
	for _, h := range in {
		seen[h] = true
		if !drop[h] {
			headers = append(headers, h)
		}
	}

	for _, c := range []string{FirstNameColumn, LastNameColumn} {
		if !seen[c] {
			headers = append(headers, c)
		}
	}

	for _, c := range DroppedColumns {
		if seen[c] {
			present = append(present, c)
		} else {
			absent = append(absent, c)
		}
	}

	return headers, present, absent
}
