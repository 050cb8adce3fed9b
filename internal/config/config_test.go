package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "cli" {
		t.Errorf("Expected default mode to be 'cli', got '%s'", cfg.Mode)
	}
	if cfg.OutputRoot != "./output" {
		t.Errorf("Expected default output to be './output', got '%s'", cfg.OutputRoot)
	}
	if cfg.ServerName != "mcp-quiz-extractor" {
		t.Errorf("Expected default server name to be 'mcp-quiz-extractor', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected default workers to be 1, got %d", cfg.Workers)
	}
	if cfg.Pdftoppm != "pdftoppm" {
		t.Errorf("Expected default pdftoppm to be 'pdftoppm', got '%s'", cfg.Pdftoppm)
	}
	if cfg.Merge || cfg.Pause {
		t.Error("Expected merge and pause to be off by default")
	}

	currentDir, _ := os.Getwd()
	if cfg.InputDirectory != currentDir {
		t.Errorf("Expected default input directory to be '%s', got '%s'", currentDir, cfg.InputDirectory)
	}

	if got := cfg.LayoutParams(); got != layout.DefaultParams() {
		t.Errorf("Expected default layout params, got %+v", got)
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutputRoot = filepath.Join(t.TempDir(), "output")
	cfg.InputDirectory = t.TempDir()
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config - cli mode",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "valid config - stdio mode",
			modify:  func(c *Config) { c.Mode = ModeStdio },
			wantErr: false,
		},
		{
			name:    "invalid mode",
			modify:  func(c *Config) { c.Mode = "server" },
			wantErr: true,
		},
		{
			name:    "empty output directory",
			modify:  func(c *Config) { c.OutputRoot = "" },
			wantErr: true,
		},
		{
			name: "empty input directory in stdio mode",
			modify: func(c *Config) {
				c.Mode = ModeStdio
				c.InputDirectory = ""
			},
			wantErr: true,
		},
		{
			name:    "empty input directory in cli mode",
			modify:  func(c *Config) { c.InputDirectory = "" },
			wantErr: false,
		},
		{
			name:    "invalid max file size",
			modify:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "invalid zoom",
			modify:  func(c *Config) { c.Zoom = 0 },
			wantErr: true,
		},
		{
			name:    "safe bottom above page",
			modify:  func(c *Config) { c.SafeBottomRatio = 1.2 },
			wantErr: true,
		},
		{
			name:    "negative trim padding",
			modify:  func(c *Config) { c.TrimPadding = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesOutputRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.OutputRoot = filepath.Join(t.TempDir(), "nested", "output")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error: %v", err)
	}
	info, err := os.Stat(cfg.OutputRoot)
	if err != nil {
		t.Fatalf("output root was not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("output root %s is not a directory", cfg.OutputRoot)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	invalidLevels := []string{"DEBUG", "INFO", "trace", "fatal", ""}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}

func TestConfigLayoutParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Zoom = 3
	cfg.AnchorTolerance = 40
	cfg.SafeBottomRatio = 0.9
	cfg.SameLineTolerance = 8
	cfg.MinTextRunes = 3
	cfg.TrimPadding = 0

	p := cfg.LayoutParams()
	if p.Zoom != 3 || p.AnchorTolerance != 40 || p.SafeBottomRatio != 0.9 {
		t.Errorf("overrides not applied: %+v", p)
	}
	if p.SameLineTolerance != 8 || p.MinTextRunes != 3 || p.TrimPadding != 0 {
		t.Errorf("overrides not applied: %+v", p)
	}
	if p.BoxInset != layout.DefaultParams().BoxInset {
		t.Errorf("non-configurable params should keep defaults, got BoxInset=%v", p.BoxInset)
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:           "cli",
		OutputRoot:     "/srv/quiz/output",
		InputDirectory: "/srv/quiz/pdfs",
		LogLevel:       "debug",
		MaxFileSize:    1024,
		Workers:        4,
	}

	result := cfg.String()
	for _, substr := range []string{
		"Mode: cli",
		"OutputRoot: /srv/quiz/output",
		"InputDirectory: /srv/quiz/pdfs",
		"LogLevel: debug",
		"MaxFileSize: 1024",
		"Workers: 4",
	} {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode      string
		wantStdio bool
		wantCLI   bool
		wantDebug bool
		logLevel  string
	}{
		{mode: "cli", wantCLI: true, logLevel: "info"},
		{mode: "stdio", wantStdio: true, logLevel: "debug", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode, LogLevel: tt.logLevel}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
			if got := cfg.IsCLIMode(); got != tt.wantCLI {
				t.Errorf("Config.IsCLIMode() = %v, want %v", got, tt.wantCLI)
			}
			if got := cfg.IsDebug(); got != tt.wantDebug {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
