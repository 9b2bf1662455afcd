// =============================================================================
// Mailchimp CSV Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Running the binary
// without a subcommand performs a conversion.
//
// COBRA CLI STRUCTURE:
//   rootCmd (mailchimp-csv)
//   ├── convertCmd (mailchimp-csv convert)
//   └── versionCmd (mailchimp-csv version)
//
// The root command owns the flags every subcommand shares: the config file
// and the logging switches.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/mailchimp-csv/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// logJSON switches the log output to JSON lines.
var logJSON bool

// appFs is the filesystem commands read and write.
var appFs afero.Fs = afero.NewOsFs()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "mailchimp-csv",
	Short: "Turn an attendee export into a Mailchimp import file",
	Long: `mailchimp-csv converts an event attendee export into a file ready for
Mailchimp's contact import.

The Name column is split into First Name and Last Name, event bookkeeping
columns are removed, and the result is written as MM-DD-YYYY-mailchimp.csv
in the folder you choose.

Example Usage:
  mailchimp-csv                                      # Pick the file and folder interactively
  mailchimp-csv convert -i attendees.csv -o ./out    # No prompts
  mailchimp-csv convert -i attendees.xlsx -o . -f xlsx`,

	// Execute prints the returned error; cobra stays quiet.
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return convertCmd.RunE(cmd, args)
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := execute(os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs the root command and prints a failure once to errOut.
func execute(errOut io.Writer) error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return err
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file; a missing default file is ignored",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().BoolVar(
		&logJSON,
		"log-json",
		false,
		"Write log lines as JSON",
	)

	// The root command converts too, so it takes the same flags.
	registerConvertFlags(rootCmd)
}
