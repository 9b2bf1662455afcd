package converter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const attendeeExport = "Name,Created At,Status,Location,Team Name,Project Submitted,Email\n" +
	"Jane Doe,2024-01-02,Going,Houston,Rockets,Yes,jane@example.com\n" +
	"Madonna,2024-01-03,Invited,,,,\n" +
	"Mary Jane Watson,2024-01-04,Going,NYC,Webs,No,mj@example.com\n"

func fixedClock() time.Time {
	return time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T, input string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/attendees.csv", []byte(input), 0o644))
	require.NoError(t, fsys.MkdirAll("/out", 0o755))
	return fsys
}

func outputEntries(t *testing.T, fsys afero.Fs) []string {
	t.Helper()
	entries, err := afero.ReadDir(fsys, "/out")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestConvertAndSave(t *testing.T) {
	t.Run("Should write the dated Mailchimp file", func(t *testing.T) {
		fsys := setup(t, attendeeExport)
		conv := New(fsys, WithClock(fixedClock))

		path, err := conv.ConvertAndSave("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		assert.Equal(t, "/out/01-05-2024-mailchimp.csv", path)

		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		assert.Equal(t,
			"Email,First Name,Last Name\n"+
				"jane@example.com,Jane,Doe\n"+
				",Madonna,\n"+
				"mj@example.com,Mary,Jane Watson\n",
			string(data))
	})

	t.Run("Should default to CSV when no format is given", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "")

		require.NoError(t, err)
		assert.Equal(t, "/out/01-05-2024-mailchimp.csv", path)
	})

	t.Run("Should write a header only file for an export without rows", func(t *testing.T) {
		fsys := setup(t, "Name,Status,Extra\n")

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		assert.Equal(t, "Extra,First Name,Last Name\n", string(data))
	})

	t.Run("Should include the row index when enabled", func(t *testing.T) {
		fsys := setup(t, "Name,Extra\nJane Doe,1\nJohn Roe,2\n")

		path, err := New(fsys, WithClock(fixedClock), WithIncludeIndex(true)).
			ConvertAndSave("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		assert.Equal(t, ",Extra,First Name,Last Name\n0,1,Jane,Doe\n1,2,John,Roe\n", string(data))
	})

	t.Run("Should replace a file written earlier the same day", func(t *testing.T) {
		fsys := setup(t, "Name\nJane Doe\n")
		require.NoError(t, afero.WriteFile(fsys, "/out/01-05-2024-mailchimp.csv", []byte("old"), 0o644))

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		assert.Equal(t, "First Name,Last Name\nJane,Doe\n", string(data))
		assert.Equal(t, []string{"01-05-2024-mailchimp.csv"}, outputEntries(t, fsys))
	})

	t.Run("Should write an Excel workbook for xlsx", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "xlsx")

		require.NoError(t, err)
		assert.Equal(t, "/out/01-05-2024-mailchimp.xlsx", path)

		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("mailchimp")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"Email", "First Name", "Last Name"}, rows[0])
		assert.Equal(t, []string{"jane@example.com", "Jane", "Doe"}, rows[1])
	})

	t.Run("Should read Excel exports by extension", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, fsys.MkdirAll("/out", 0o755))

		f := excelize.NewFile()
		header := []any{"Name", "Status", "Extra"}
		row := []any{"Jane Doe", "Going", "1"}
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
		require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		require.NoError(t, f.Close())
		require.NoError(t, afero.WriteFile(fsys, "/in/attendees.xlsx", buf.Bytes(), 0o644))

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.xlsx", "/out", "csv")

		require.NoError(t, err)
		data, err := afero.ReadFile(fsys, path)
		require.NoError(t, err)
		assert.Equal(t, "Extra,First Name,Last Name\n1,Jane,Doe\n", string(data))
	})

	t.Run("Should fail with a schema error and write nothing", func(t *testing.T) {
		fsys := setup(t, "Full Name,Status\nJane Doe,Going\n")

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		assert.Empty(t, path)
		assert.ErrorIs(t, err, types.ErrSchema)
		assert.Empty(t, outputEntries(t, fsys))
	})

	t.Run("Should fail with a parse error and write nothing", func(t *testing.T) {
		fsys := setup(t, "Name\nJane,Doe\n")

		_, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		assert.ErrorIs(t, err, types.ErrParse)
		assert.Empty(t, outputEntries(t, fsys))
	})

	t.Run("Should reject a Latin-1 export and write nothing", func(t *testing.T) {
		fsys := setup(t, "Name,Extra\nJos\xe9 Cruz,1\n")

		path, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		assert.Empty(t, path)
		assert.ErrorIs(t, err, types.ErrParse)
		assert.Empty(t, outputEntries(t, fsys))
	})

	t.Run("Should fail with an IO error when the input is a directory", func(t *testing.T) {
		dir := t.TempDir()
		inDir := filepath.Join(dir, "export.csv")
		outDir := filepath.Join(dir, "out")
		require.NoError(t, os.Mkdir(inDir, 0o755))
		require.NoError(t, os.Mkdir(outDir, 0o755))

		_, err := New(afero.NewOsFs(), WithClock(fixedClock)).ConvertAndSave(inDir, outDir, "csv")

		assert.ErrorIs(t, err, types.ErrIO)
		entries, readErr := os.ReadDir(outDir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})

	t.Run("Should fail with an IO error for a missing input", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		_, err := New(fsys).ConvertAndSave("/in/missing.csv", "/out", "csv")

		assert.ErrorIs(t, err, types.ErrIO)
	})

	t.Run("Should fail with an IO error for a missing output directory", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		_, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/nowhere", "csv")

		assert.ErrorIs(t, err, types.ErrIO)
		exists, _ := afero.Exists(fsys, "/nowhere/01-05-2024-mailchimp.csv")
		assert.False(t, exists)
	})

	t.Run("Should fail with an IO error when the output is not writable", func(t *testing.T) {
		base := setup(t, attendeeExport)
		fsys := afero.NewReadOnlyFs(base)

		_, err := New(fsys, WithClock(fixedClock)).ConvertAndSave("/in/attendees.csv", "/out", "csv")

		assert.ErrorIs(t, err, types.ErrIO)
		assert.Empty(t, outputEntries(t, base))
	})

	t.Run("Should reject unsupported formats before reading", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		_, err := New(fsys).ConvertAndSave("/in/missing.csv", "/out", "pdf")

		assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
	})
}

func TestRun(t *testing.T) {
	t.Run("Should report statistics", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		result, err := New(fsys, WithClock(fixedClock)).Run("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		assert.Equal(t, "/in/attendees.csv", result.InputFile)
		assert.Equal(t, "csv", result.Format)
		assert.Equal(t, 3, result.Stats.RowsProcessed)
		assert.Equal(t, 7, result.Stats.InputColumns)
		assert.Equal(t, 3, result.Stats.OutputColumns)
		assert.Len(t, result.Stats.Transform.DroppedPresent, 6)
		assert.Empty(t, result.Stats.Transform.DroppedAbsent)
	})

	t.Run("Should not write anything in a dry run", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		result, err := New(fsys, WithClock(fixedClock), WithDryRun(true)).Run("/in/attendees.csv", "/out", "csv")

		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.Equal(t, "/out/01-05-2024-mailchimp.csv", result.OutputFile)
		assert.Empty(t, outputEntries(t, fsys))
	})

	t.Run("Should use a custom basename", func(t *testing.T) {
		fsys := setup(t, attendeeExport)

		result, err := New(fsys, WithClock(fixedClock), WithBasename("audience")).Run("/in/attendees.csv", "/out", "tsv")

		require.NoError(t, err)
		assert.Equal(t, "/out/01-05-2024-audience.tsv", result.OutputFile)
	})
}
