// =============================================================================
// Mailchimp CSV Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. The
// configuration controls how a run behaves (logging, output format, preset
// paths, CSV dialect). It never changes which columns are kept or dropped;
// that mapping is fixed in the converter.
//
// CONFIGURATION FILE:
//   config.yaml in the current directory unless --config points elsewhere.
//   When the default file does not exist, built-in defaults are used.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/mailchimp-csv/internal/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogJSON switches the log output to JSON lines.
	// Default: false
	LogJSON bool `yaml:"log_json"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is the file format (and extension) of the generated file.
	// Valid values: "csv", "tsv", "xlsx"
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// IncludeIndex writes a leading unnamed column holding the 0-based source
	// row number. Mailchimp ignores unknown columns but shows them during the
	// import mapping step, so this is off by default.
	// Default: false
	IncludeIndex bool `yaml:"include_index"`

	// =========================================================================
	// PRESET PATHS
	// =========================================================================

	// InputFile, when set, is used instead of asking for the attendee export.
	InputFile string `yaml:"input_file"`

	// OutputDir, when set, is used instead of asking for the destination folder.
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// CSV PARSING SETTINGS
	// =========================================================================

	// CSVSettings contains settings for parsing the input CSV file.
	CSVSettings CSVSettings `yaml:"csv_settings"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Accepts a literal character or one of "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// Comma returns the delimiter as a rune for encoding/csv.
func (s CSVSettings) Comma() rune {
	switch s.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "":
		return ','
	default:
		return []rune(s.Delimiter)[0]
	}
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "config.yaml"

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "csv"
	}
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.OutputFormat = strings.ToLower(strings.TrimPrefix(cfg.OutputFormat, "."))
}

// Normalize applies the defaults again after fields were changed in code,
// e.g. by command line flags.
func (c *Config) Normalize() {
	applyDefaults(c)
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration from a YAML file.
//
// PARAMETERS:
//   - fsys: The filesystem to read from.
//   - path: The path to the configuration file.
//   - mustExist: When false, a missing file yields the defaults instead of
//     an error. The CLI passes false for the implicit default path.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(fsys afero.Fs, path string, mustExist bool) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the option values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch c.OutputFormat {
	case "csv", "tsv", "xlsx":
	default:
		return fmt.Errorf("%w: output_format %q", types.ErrUnsupportedFormat, c.OutputFormat)
	}

	switch d := c.CSVSettings.Delimiter; d {
	case "\\t", "tab", "TAB", "pipe", "PIPE", "semicolon":
	case "\"", "\r", "\n":
		return fmt.Errorf("csv_settings.delimiter %q cannot be used as a separator", d)
	default:
		if utf8.RuneCountInString(d) != 1 {
			return fmt.Errorf("csv_settings.delimiter must be a single character, got %q", d)
		}
	}

	return nil
}
