// =============================================================================
// Mailchimp CSV Converter - Path Selection
// =============================================================================
//
// This module asks for the two paths a conversion needs: the attendee export
// and the folder the import file goes into.
//
// SELECTORS:
//   Static      : Paths given up front (flags or config file)
//   Interactive : Terminal file pickers (charmbracelet/huh)
//
// Both report a missing or abandoned choice as types.ErrSelectionCancelled,
// which the CLI shows as a notice rather than a failure.
//
// =============================================================================

package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/ginjaninja78/mailchimp-csv/internal/types"
)

// InputTypes are the extensions offered by the input file picker.
var InputTypes = []string{".csv", ".xlsx"}

// PathSelector supplies the input file and output directory.
type PathSelector interface {
	SelectInputFile(ctx context.Context) (string, error)
	SelectOutputDirectory(ctx context.Context) (string, error)
}

// Selection is a completed pair of paths.
type Selection struct {
	InputFile string
	OutputDir string
}

// Select asks sel for the input file, then the output directory. It stops
// at the first cancelled choice.
func Select(ctx context.Context, sel PathSelector) (Selection, error) {
	input, err := sel.SelectInputFile(ctx)
	if err != nil {
		return Selection{}, err
	}
	output, err := sel.SelectOutputDirectory(ctx)
	if err != nil {
		return Selection{}, err
	}
	return Selection{InputFile: input, OutputDir: output}, nil
}

// =============================================================================
// STATIC SELECTOR
// =============================================================================

// Static returns preset paths.
type Static struct {
	InputFile string
	OutputDir string
}

func (s Static) SelectInputFile(ctx context.Context) (string, error) {
	return preset(ctx, s.InputFile)
}

func (s Static) SelectOutputDirectory(ctx context.Context) (string, error) {
	return preset(ctx, s.OutputDir)
}

func preset(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", types.ErrSelectionCancelled
	}
	return path, nil
}

// =============================================================================
// INTERACTIVE SELECTOR
// =============================================================================

// FormRunner runs a huh form until it completes or is aborted.
type FormRunner func(ctx context.Context, form *huh.Form) error

// Interactive asks for both paths with terminal file pickers.
type Interactive struct {
	// StartDir is the directory the pickers open in. Default: "."
	StartDir string

	run FormRunner
}

// NewInteractive creates an Interactive selector starting in startDir.
func NewInteractive(startDir string) *Interactive {
	if startDir == "" {
		startDir = "."
	}
	return &Interactive{StartDir: startDir, run: runForm}
}

// WithRunner replaces the form runner. Tests use it to stand in for a
// terminal.
func (i *Interactive) WithRunner(run FormRunner) *Interactive {
	i.run = run
	return i
}

func (i *Interactive) SelectInputFile(ctx context.Context) (string, error) {
	var path string
	picker := huh.NewFilePicker().
		Title("Select the attendee CSV file").
		CurrentDirectory(i.StartDir).
		AllowedTypes(InputTypes).
		FileAllowed(true).
		DirAllowed(false).
		Picking(true).
		Value(&path)
	return i.pick(ctx, picker, &path)
}

func (i *Interactive) SelectOutputDirectory(ctx context.Context) (string, error) {
	var path string
	picker := huh.NewFilePicker().
		Title("Select the output folder").
		CurrentDirectory(i.StartDir).
		FileAllowed(false).
		DirAllowed(true).
		Picking(true).
		Value(&path)
	return i.pick(ctx, picker, &path)
}

func (i *Interactive) pick(ctx context.Context, picker *huh.FilePicker, path *string) (string, error) {
	form := huh.NewForm(huh.NewGroup(picker))
	if err := i.run(ctx, form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", types.ErrSelectionCancelled
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	if *path == "" {
		return "", types.ErrSelectionCancelled
	}
	return *path, nil
}

func runForm(ctx context.Context, form *huh.Form) error {
	return form.RunWithContext(ctx)
}
