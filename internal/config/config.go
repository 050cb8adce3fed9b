package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// Default values
	DefaultOutput      = "./output"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultWorkers     = 1
	DefaultPdftoppm    = "pdftoppm"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "QUIZ"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the quiz extractor
type Config struct {
	Mode string // "cli" or "stdio"

	// Paths
	OutputRoot     string
	InputDirectory string
	Inputs         []string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
	Workers     int
	Pdftoppm    string
	Merge       bool
	Pause       bool

	// Layout engine overrides
	Zoom              float64
	AnchorTolerance   float64
	SafeBottomRatio   float64
	SameLineTolerance float64
	MinTextRunes      int
	TrimPadding       int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	p := layout.DefaultParams()
	return &Config{
		Mode:              ModeCLI,
		OutputRoot:        DefaultOutput,
		InputDirectory:    currentDir,
		Version:           "1.0.0",
		ServerName:        "mcp-quiz-extractor",
		LogLevel:          DefaultLogLevel,
		MaxFileSize:       DefaultMaxFileSize,
		Workers:           DefaultWorkers,
		Pdftoppm:          DefaultPdftoppm,
		Zoom:              p.Zoom,
		AnchorTolerance:   p.AnchorTolerance,
		SafeBottomRatio:   p.SafeBottomRatio,
		SameLineTolerance: p.SameLineTolerance,
		MinTextRunes:      p.MinTextRunes,
		TrimPadding:       p.TrimPadding,
	}
}

// stdinIsTerminal reports whether an operator can acknowledge a finished run
var stdinIsTerminal = func() bool {
	return logger.IsTerminal(os.Stdin)
}

// LoadFromFlags parses command line flags and returns a configuration.
// Positional arguments are the PDF files or directories to process.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Pause = stdinIsTerminal()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.Inputs = pflag.Args()

	for _, p := range []*string{&cfg.OutputRoot, &cfg.InputDirectory} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("output", cfg.OutputRoot)
	viper.SetDefault("dir", cfg.InputDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("pdftoppm", cfg.Pdftoppm)
	viper.SetDefault("merge", cfg.Merge)
	viper.SetDefault("pause", cfg.Pause)
	viper.SetDefault("zoom", cfg.Zoom)
	viper.SetDefault("anchor-tolerance", cfg.AnchorTolerance)
	viper.SetDefault("safe-bottom", cfg.SafeBottomRatio)
	viper.SetDefault("same-line-tolerance", cfg.SameLineTolerance)
	viper.SetDefault("min-text-runes", cfg.MinTextRunes)
	viper.SetDefault("trim-padding", cfg.TrimPadding)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' to process the given PDFs, 'stdio' for an MCP server")
	pflag.String("output", cfg.OutputRoot, "Output root for per-round CSVs and images")
	pflag.String("dir", cfg.InputDirectory, "Directory searched for PDFs when no inputs are given")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int("workers", cfg.Workers, "Pages laid out in parallel per file")
	pflag.String("pdftoppm", cfg.Pdftoppm, "Path to the pdftoppm binary used for rendering")
	pflag.Bool("merge", cfg.Merge, "Merge all per-round CSVs into quiz_total.csv afterwards")
	pflag.Bool("pause", cfg.Pause, "Wait for Enter before exiting; on by default when stdin is a terminal")
	pflag.Float64("zoom", cfg.Zoom, "Render scale for question and option images")
	pflag.Float64("anchor-tolerance", cfg.AnchorTolerance, "Max distance of a question number from the column edge")
	pflag.Float64("safe-bottom", cfg.SafeBottomRatio, "Fraction of the page height above the footer")
	pflag.Float64("same-line-tolerance", cfg.SameLineTolerance, "Vertical distance grouping option markers into a line")
	pflag.Int("min-text-runes", cfg.MinTextRunes, "Shorter option text is captured as an image")
	pflag.Int("trim-padding", cfg.TrimPadding, "White margin kept around trimmed images")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "output", "dir", "loglevel", "maxfilesize", "workers", "pdftoppm",
		"merge", "pause", "zoom", "anchor-tolerance", "safe-bottom",
		"same-line-tolerance", "min-text-runes", "trim-padding",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nQuiz Extractor - turns two-column exam PDFs into quiz CSVs and images\n\n")
		fmt.Fprintf(os.Stderr, "  %s [options] [file.pdf|dir ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ./pdfs                       # extract every PDF under ./pdfs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --merge --output=out a.pdf   # extract then build out/quiz_total.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=./pdfs    # MCP server over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_OUTPUT       Output root\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_DIR          Input directory\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_MAXFILESIZE  Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  QUIZ_PDFTOPPM     pdftoppm binary\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.OutputRoot = viper.GetString("output")
	cfg.InputDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Workers = viper.GetInt("workers")
	cfg.Pdftoppm = viper.GetString("pdftoppm")
	cfg.Merge = viper.GetBool("merge")
	cfg.Pause = viper.GetBool("pause")
	cfg.Zoom = viper.GetFloat64("zoom")
	cfg.AnchorTolerance = viper.GetFloat64("anchor-tolerance")
	cfg.SafeBottomRatio = viper.GetFloat64("safe-bottom")
	cfg.SameLineTolerance = viper.GetFloat64("same-line-tolerance")
	cfg.MinTextRunes = viper.GetInt("min-text-runes")
	cfg.TrimPadding = viper.GetInt("trim-padding")
}

// Validate checks if the configuration is valid and creates the output root
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	if c.OutputRoot == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.Mode == ModeStdio && c.InputDirectory == "" {
		return errors.New("input directory cannot be empty in stdio mode")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if err := c.LayoutParams().Validate(); err != nil {
		return fmt.Errorf("invalid layout parameters: %w", err)
	}

	if _, err := os.Stat(c.OutputRoot); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputRoot, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputRoot, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputRoot, err)
	}

	return nil
}

// LayoutParams returns the engine defaults with the configured overrides applied
func (c *Config) LayoutParams() layout.Params {
	p := layout.DefaultParams()
	p.Zoom = c.Zoom
	p.AnchorTolerance = c.AnchorTolerance
	p.SafeBottomRatio = c.SafeBottomRatio
	p.SameLineTolerance = c.SameLineTolerance
	p.MinTextRunes = c.MinTextRunes
	p.TrimPadding = c.TrimPadding
	return p
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, OutputRoot: %s, InputDirectory: %s, LogLevel: %s, MaxFileSize: %d, Workers: %d}",
		c.Mode, c.OutputRoot, c.InputDirectory, c.LogLevel, c.MaxFileSize, c.Workers)
}

// IsStdioMode returns true if the extractor runs as an MCP server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsCLIMode returns true if the extractor processes command line inputs
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}
