// =============================================================================
// Mailchimp CSV Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   mailchimp-csv            - Pick an export and a folder, then convert
//   mailchimp-csv convert    - Convert with paths from flags or config
//   mailchimp-csv version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, transformation, serialization, selection
//   - pkg/       : Output naming and atomic file writes
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/mailchimp-csv/cmd"
)

func main() {
	cmd.Execute()
}
