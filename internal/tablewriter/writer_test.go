package tablewriter

import (
	"bytes"
	"testing"

	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *types.Table {
	table := types.NewTable([]string{"Extra", "First Name", "Last Name"})
	table.Rows = append(table.Rows,
		types.Row{"Extra": "1", "First Name": "Jane", "Last Name": "Doe"},
		types.Row{"Extra": "00501", "First Name": "Madonna", "Last Name": ""},
	)
	return table
}

func TestWrite(t *testing.T) {
	t.Run("Should write CSV without an index column by default", func(t *testing.T) {
		var buf bytes.Buffer

		err := Write(&buf, sampleTable(), "csv", DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, "Extra,First Name,Last Name\n1,Jane,Doe\n00501,Madonna,\n", buf.String())
	})

	t.Run("Should prepend the row index when requested", func(t *testing.T) {
		var buf bytes.Buffer
		opts := DefaultOptions()
		opts.IncludeIndex = true

		err := Write(&buf, sampleTable(), "csv", opts)

		require.NoError(t, err)
		assert.Equal(t, ",Extra,First Name,Last Name\n0,1,Jane,Doe\n1,00501,Madonna,\n", buf.String())
	})

	t.Run("Should write tab separated output", func(t *testing.T) {
		var buf bytes.Buffer

		err := Write(&buf, sampleTable(), ".TSV", DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, "Extra\tFirst Name\tLast Name\n1\tJane\tDoe\n00501\tMadonna\t\n", buf.String())
	})

	t.Run("Should write only the header for an empty table", func(t *testing.T) {
		var buf bytes.Buffer

		err := Write(&buf, types.NewTable([]string{"First Name", "Last Name"}), "csv", DefaultOptions())

		require.NoError(t, err)
		assert.Equal(t, "First Name,Last Name\n", buf.String())
	})

	t.Run("Should write a workbook with text cells", func(t *testing.T) {
		var buf bytes.Buffer
		opts := DefaultOptions()
		opts.SheetName = "mailchimp"

		require.NoError(t, Write(&buf, sampleTable(), "xlsx", opts))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("mailchimp")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"Extra", "First Name", "Last Name"}, rows[0])
		assert.Equal(t, "00501", rows[2][0])
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		var buf bytes.Buffer

		err := Write(&buf, sampleTable(), "pdf", DefaultOptions())

		assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
		assert.Zero(t, buf.Len())
	})
}

func TestSupported(t *testing.T) {
	t.Run("Should accept known formats case-insensitively", func(t *testing.T) {
		assert.True(t, Supported("csv"))
		assert.True(t, Supported("XLSX"))
		assert.True(t, Supported(".tsv"))
		assert.False(t, Supported("json"))
		assert.False(t, Supported(""))
	})
}
