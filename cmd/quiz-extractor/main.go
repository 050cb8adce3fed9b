package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/a3tai/mcp-quiz-extractor/internal/config"
	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/mcp"
	"github.com/a3tai/mcp-quiz-extractor/internal/merge"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/render"
	"github.com/a3tai/mcp-quiz-extractor/internal/quiz"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

var log = logger.Get("main")

// setupLogging routes logs to stderr. In stdio mode stdout carries the MCP
// protocol, and logs stay quiet unless debug is enabled.
func setupLogging(cfg *config.Config) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		level = slog.LevelWarn
	}
	logger.Setup(level, os.Stderr, !cfg.IsStdioMode() && logger.IsTerminal(os.Stderr))
}

// newService creates the PDF service. In stdio mode every path is confined
// to the input directory.
func newService(cfg *config.Config) (*pdf.Service, error) {
	restrict := ""
	if cfg.IsStdioMode() {
		restrict = cfg.InputDirectory
	}
	svc, err := pdf.NewService(cfg.MaxFileSize, restrict)
	if err != nil {
		return nil, err
	}
	svc.SetWordTolerance(cfg.LayoutParams().WordTolerance)
	return svc, nil
}

func newExtractor(cfg *config.Config, svc *pdf.Service, raster render.Factory) (*quiz.Extractor, error) {
	return quiz.NewExtractor(quiz.ServiceOpener(svc), raster, quiz.Options{
		OutputRoot: cfg.OutputRoot,
		Params:     cfg.LayoutParams(),
		Workers:    cfg.Workers,
	})
}

// runCLI extracts the configured inputs, then merges when asked
func runCLI(ctx context.Context, cfg *config.Config, svc *pdf.Service, extractor *quiz.Extractor, out io.Writer) error {
	inputs := cfg.Inputs
	if len(inputs) == 0 {
		inputs = []string{cfg.InputDirectory}
	}
	paths, err := svc.ExpandInputs(inputs)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn("no PDF files found", "inputs", inputs)
		return nil
	}

	start := time.Now()
	results, runErr := extractor.ProcessAll(ctx, paths)
	questions, answers := quiz.Totals(results)
	for _, r := range results {
		fmt.Fprintf(out, "%s: round %s, %s, %d questions, %d answers, %s\n",
			r.Path, r.Round, r.Kind, len(r.Questions), len(r.Answers), r.Errors.Summary())
	}
	fmt.Fprintf(out, "Processed %d of %d file(s): %d questions, %d answers in %s\n",
		len(results), len(paths), questions, answers, time.Since(start).Round(time.Millisecond))
	if runErr != nil {
		return runErr
	}

	if cfg.Merge {
		result, err := merge.Merge(ctx, extractor.OutputRoot())
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		fmt.Fprintf(out, "Merged %d file(s) into %s (%d rows)\n", len(result.Files), result.Path, len(result.Rows))
	}
	return nil
}

// waitForEnter blocks until a line is read from in
func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Press Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}

func main() {
	os.Exit(run())
}

// run wires the configured mode and returns the process exit code
func run() int {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	log.Debug("starting", "config", cfg.String())

	svc, err := newService(cfg)
	if err != nil {
		log.Error("failed to create PDF service", "error", err)
		return 1
	}
	extractor, err := newExtractor(cfg, svc, render.PdftoppmFactory(cfg.Pdftoppm))
	if err != nil {
		log.Error("failed to create extractor", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsStdioMode() {
		server, err := mcp.NewServer(cfg, svc, extractor)
		if err != nil {
			log.Error("failed to create MCP server", "error", err)
			return 1
		}
		if err := server.Run(ctx); err != nil {
			log.Error("server error", "error", err)
			return 1
		}
		return 0
	}

	code := 0
	if err := runCLI(ctx, cfg, svc, extractor, os.Stdout); err != nil {
		log.Error("extraction failed", "error", err)
		code = 1
	}
	if cfg.Pause {
		waitForEnter(os.Stdin, os.Stdout)
	}
	return code
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Quiz Extractor\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
