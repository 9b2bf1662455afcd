// =============================================================================
// Mailchimp CSV Converter - Converter Module
// =============================================================================
//
// This module orchestrates one conversion run, from reading the attendee
// export to writing the Mailchimp import file.
//
// CONVERSION PIPELINE:
//   1. Check that the output format can be serialized
//   2. Read and parse the input file (CSV, or XLSX by extension)
//   3. Transform the record set
//   4. Build the date-stamped output file name
//   5. Check the output directory
//   6. Serialize and write the file in one step
//
// Nothing touches the output directory until steps 1-5 have succeeded, and
// the write itself goes through a temporary file, so a failed run never
// leaves a partial import file behind.
//
// =============================================================================

package converter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/mailchimp-csv/internal/config"
	"github.com/ginjaninja78/mailchimp-csv/internal/csvparser"
	"github.com/ginjaninja78/mailchimp-csv/internal/logger"
	"github.com/ginjaninja78/mailchimp-csv/internal/tablewriter"
	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/ginjaninja78/mailchimp-csv/internal/xlsxparser"
	"github.com/ginjaninja78/mailchimp-csv/pkg/utils"
	"github.com/spf13/afero"
)

const (
	// DefaultBasename is the file name stem of every import file.
	DefaultBasename = "mailchimp"

	// DefaultFormat is used when no format is given.
	DefaultFormat = "csv"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a conversion run.
type Result struct {
	// InputFile is the path of the attendee export.
	InputFile string

	// OutputFile is the path written, or in a dry run the path that would
	// have been written.
	OutputFile string

	// Format is the serialization format used.
	Format string

	// DryRun is true when nothing was written.
	DryRun bool

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of records read and written.
	RowsProcessed int

	// InputColumns and OutputColumns are the column counts before and after.
	InputColumns  int
	OutputColumns int

	// Transform holds the transformer's statistics.
	Transform TransformStats

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs conversions against a filesystem.
type Converter struct {
	fs           afero.Fs
	now          func() time.Time
	logger       logger.Logger
	csvSettings  config.CSVSettings
	basename     string
	includeIndex bool
	dryRun       bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithClock sets the clock used to date the output file.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithCSVSettings sets the input CSV dialect.
func WithCSVSettings(s config.CSVSettings) Option {
	return func(c *Converter) { c.csvSettings = s }
}

// WithBasename overrides the output file name stem.
func WithBasename(name string) Option {
	return func(c *Converter) { c.basename = name }
}

// WithIncludeIndex adds the leading row index column to the output.
func WithIncludeIndex(include bool) Option {
	return func(c *Converter) { c.includeIndex = include }
}

// WithDryRun runs everything except the final write.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// New creates a Converter on fsys.
func New(fsys afero.Fs, opts ...Option) *Converter {
	c := &Converter{
		fs:          fsys,
		now:         time.Now,
		logger:      logger.Nop(),
		csvSettings: config.CSVSettings{Delimiter: ","},
		basename:    DefaultBasename,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// ConvertAndSave converts the export at inputPath and writes the import file
// into outputDir.
//
// PARAMETERS:
//   - inputPath: The attendee export.
//   - outputDir: An existing directory.
//   - format: "csv", "tsv" or "xlsx"; empty means "csv".
//
// RETURNS:
//   - The full path of the written file.
//   - An error if any step fails. Nothing is written in that case.
func (c *Converter) ConvertAndSave(inputPath, outputDir, format string) (string, error) {
	result, err := c.Run(inputPath, outputDir, format)
	if err != nil {
		return "", err
	}
	return result.OutputFile, nil
}

// Run executes the conversion pipeline and reports statistics.
func (c *Converter) Run(inputPath, outputDir, format string) (*Result, error) {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: CHECK FORMAT
	// =========================================================================

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = DefaultFormat
	}
	if !tablewriter.Supported(format) {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}

	result := &Result{
		InputFile: inputPath,
		Format:    format,
		DryRun:    c.dryRun,
	}

	c.logger.Info("Processing file", "input", inputPath, "format", format)

	// =========================================================================
	// STEP 2: PARSE INPUT
	// =========================================================================

	table, err := c.readInput(inputPath)
	if err != nil {
		return nil, err
	}

	result.Stats.InputColumns = len(table.Headers)
	c.logger.Debug("Parsed input", "rows", table.RowCount(), "columns", len(table.Headers))

	// =========================================================================
	// STEP 3: TRANSFORM
	// =========================================================================

	out, stats, err := TransformWithStats(table)
	if err != nil {
		return nil, fmt.Errorf("failed to transform %s: %w", inputPath, err)
	}

	result.Stats.Transform = stats
	result.Stats.RowsProcessed = stats.Rows
	result.Stats.OutputColumns = len(out.Headers)

	if len(stats.DroppedAbsent) > 0 {
		c.logger.Debug("Columns to drop were not in the input", "columns", stats.DroppedAbsent)
	}
	if stats.MissingNames > 0 {
		c.logger.Warn("Rows without a name", "count", stats.MissingNames)
	}

	// =========================================================================
	// STEP 4: BUILD OUTPUT PATH
	// =========================================================================

	fileName := utils.BuildOutputPath(c.basename, format, c.now())
	outputPath := filepath.Join(outputDir, fileName)
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 5: CHECK OUTPUT DIRECTORY
	// =========================================================================

	if !utils.DirExists(c.fs, outputDir) {
		return nil, &types.IOError{Op: "write to", Path: outputDir, Err: os.ErrNotExist}
	}

	// =========================================================================
	// STEP 6: SERIALIZE AND WRITE
	// =========================================================================
	// Serialize into memory first so a serializer failure never reaches the
	// filesystem.

	var buf bytes.Buffer
	opts := tablewriter.DefaultOptions()
	opts.IncludeIndex = c.includeIndex
	opts.SheetName = c.basename
	if err := tablewriter.Write(&buf, out, format, opts); err != nil {
		return nil, fmt.Errorf("failed to serialize output: %w", err)
	}

	if c.dryRun {
		c.logger.Info("Dry run, not writing", "output", outputPath, "rows", out.RowCount())
		result.Stats.ProcessingTime = time.Since(startTime)
		return result, nil
	}

	err = utils.WriteFileAtomic(c.fs, outputPath, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, &types.IOError{Op: "write", Path: outputPath, Err: err}
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Info("Wrote output", "output", outputPath, "rows", out.RowCount(), "elapsed", result.Stats.ProcessingTime)

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readInput picks the parser by file extension. Anything that is not an
// Excel workbook is read as delimited text.
func (c *Converter) readInput(path string) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseFile(c.fs, path)
	default:
		return csvparser.ParseFile(c.fs, path, c.csvSettings)
	}
}
