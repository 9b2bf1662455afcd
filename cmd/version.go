// =============================================================================
// Mailchimp CSV Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command.
//
// COMMAND USAGE:
//   mailchimp-csv version
//
// OUTPUT:
//   Mailchimp CSV Converter
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.11
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/mailchimp-csv/cmd.Version=1.0.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Mailchimp CSV Converter")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
