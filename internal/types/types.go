// =============================================================================
// Mailchimp CSV Converter - Shared Types
// =============================================================================
//
// This package contains the record set types shared by the readers, the
// transformer and the writers. Keeping them here avoids import cycles between:
//   - csvparser / xlsxparser (produce tables)
//   - converter (transforms tables)
//   - tablewriter (serializes tables)
//
// =============================================================================

package types

// =============================================================================
// RECORD SET TYPES
// =============================================================================

// Row is a single record keyed by column header.
//
// A header that has no key in the map is a missing cell. This is different
// from a key holding the empty string, which is a present but empty cell.
type Row map[string]string

// Table is an ordered record set: a header line followed by data rows.
type Table struct {
	// Headers is the column order. Writers emit columns in this order.
	Headers []string

	// Rows holds the data rows in source order.
	Rows []Row

	// SourceFile is the path the table was read from, if any.
	SourceFile string
}

// NewTable creates an empty table with the given headers.
func NewTable(headers []string) *Table {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Table{
		Headers: h,
		Rows:    []Row{},
	}
}

// HasColumn reports whether the header list contains name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of name in the headers, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Values returns the cells of row i in header order. Missing cells are
// returned as empty strings.
func (t *Table) Values(i int) []string {
	row := t.Rows[i]
	values := make([]string, len(t.Headers))
	for j, h := range t.Headers {
		values[j] = row[h]
	}
	return values
}

// Lookup returns the cell value and whether the cell is present.
func (r Row) Lookup(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}
