// =============================================================================
// Mailchimp CSV Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which runs one conversion.
//
// COMMAND USAGE:
//   mailchimp-csv convert [flags]
//
// FLAGS:
//   --input, -i         : The attendee export (.csv or .xlsx)
//   --output-dir, -o    : The folder the import file is written to
//   --format, -f        : Output format: csv, tsv or xlsx
//   --include-index     : Write a leading row index column
//   --dry-run           : Do everything except write the file
//
// PROCESSING PIPELINE:
//   1. Load configuration and merge the flags over it
//   2. Set up logging
//   3. Select the input file and output directory
//   4. Run the conversion
//   5. Report the result
//
// Paths that are neither flags nor in the config file are asked for with a
// file picker when stdin is a terminal. Without a terminal, or when the user
// backs out of a picker, the command prints a notice and exits cleanly.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/ginjaninja78/mailchimp-csv/internal/config"
	"github.com/ginjaninja78/mailchimp-csv/internal/converter"
	"github.com/ginjaninja78/mailchimp-csv/internal/logger"
	"github.com/ginjaninja78/mailchimp-csv/internal/selector"
	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CancelledMessage is printed when no input file or output directory was
// chosen.
const CancelledMessage = "Please select both a CSV file and an output directory."

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputFile    string
	outputDir    string
	outputFormat string
	includeIndex bool
	dryRun       bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an attendee export into a Mailchimp import file",
	Long: `The convert command reads an attendee export, splits the Name column into
First Name and Last Name, drops the columns Mailchimp does not need, and
writes MM-DD-YYYY-mailchimp.<format> into the output folder.

An existing file with the same name is replaced. Nothing is written when
any step fails.`,

	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context(), cmd.Flags(), cmd.OutOrStdout(), appFs)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(convertCmd)
	registerConvertFlags(convertCmd)
}

// registerConvertFlags adds the conversion flags to cmd.
func registerConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Attendee export to convert (.csv or .xlsx)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Existing folder to write the import file to")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: csv, tsv or xlsx (default csv)")
	cmd.Flags().BoolVar(&includeIndex, "include-index", false, "Write a leading row index column")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the conversion without writing the file")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert orchestrates one conversion from the command line.
//
// PARAMETERS:
//   - ctx: Cancels the file pickers.
//   - flags: The parsed flag set, used to tell set flags from defaults.
//   - out: Where user-facing messages go.
//   - fsys: The filesystem to read and write.
//
// RETURNS:
//   - nil on success and on a cancelled selection.
//   - An error for configuration problems and failed conversions.
func runConvert(ctx context.Context, flags *pflag.FlagSet, out io.Writer, fsys afero.Fs) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := config.Load(fsys, cfgFile, flags.Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := mergeFlags(cfg, flags); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: SET UP LOGGING
	// =========================================================================

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.JSON = cfg.LogJSON
	log := logger.New(logCfg)

	// =========================================================================
	// STEP 3: SELECT PATHS
	// =========================================================================

	selection, err := selector.Select(ctx, pathSelector(cfg))
	if errors.Is(err, types.ErrSelectionCancelled) {
		log.Debug("Selection cancelled")
		fmt.Fprintln(out, noticeStyle.Render(CancelledMessage))
		return nil
	}
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: CONVERT
	// =========================================================================

	conv := converter.New(fsys,
		converter.WithLogger(log),
		converter.WithCSVSettings(cfg.CSVSettings),
		converter.WithIncludeIndex(cfg.IncludeIndex),
		converter.WithDryRun(dryRun),
	)

	result, err := conv.Run(selection.InputFile, selection.OutputDir, cfg.OutputFormat)
	if err != nil {
		log.Debug("Conversion failed", "input", selection.InputFile, "error", err)
		return err
	}

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	if result.DryRun {
		fmt.Fprintf(out, "%s %s\n", noticeStyle.Render("Dry run, would write"), pathStyle.Render(result.OutputFile))
	} else {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓ Converted file saved to"), pathStyle.Render(result.OutputFile))
	}
	fmt.Fprintf(out, "  %d row(s), %d column(s)\n", result.Stats.RowsProcessed, result.Stats.OutputColumns)

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

// mergeFlags lays the flags that were set over cfg and validates the result.
func mergeFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if inputFile != "" {
		cfg.InputFile = inputFile
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("format") {
		cfg.OutputFormat = outputFormat
	}
	if flags.Changed("include-index") {
		cfg.IncludeIndex = includeIndex
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logJSON {
		cfg.LogJSON = true
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// pathSelector prefers preset paths and falls back to file pickers on a
// terminal. With no terminal a missing path cancels the selection.
func pathSelector(cfg *config.Config) selector.PathSelector {
	static := selector.Static{InputFile: cfg.InputFile, OutputDir: cfg.OutputDir}
	if static.InputFile != "" && static.OutputDir != "" {
		return static
	}
	if !stdinIsTerminal() {
		return static
	}
	return mixedSelector{static: static, interactive: selector.NewInteractive(".")}
}

var stdinIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// mixedSelector uses a preset path when there is one and asks otherwise.
type mixedSelector struct {
	static      selector.Static
	interactive *selector.Interactive
}

func (m mixedSelector) SelectInputFile(ctx context.Context) (string, error) {
	if m.static.InputFile != "" {
		return m.static.InputFile, nil
	}
	return m.interactive.SelectInputFile(ctx)
}

func (m mixedSelector) SelectOutputDirectory(ctx context.Context) (string, error) {
	if m.static.OutputDir != "" {
		return m.static.OutputDir, nil
	}
	return m.interactive.SelectOutputDirectory(ctx)
}
