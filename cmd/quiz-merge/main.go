package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-quiz-extractor/internal/config"
	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/merge"
)

type options struct {
	output  string
	format  string
	verbose bool
	help    bool
}

func parseFlags(args []string) (*options, []string, error) {
	fs := pflag.NewFlagSet("quiz-merge", pflag.ContinueOnError)
	opts := &options{}
	fs.StringVarP(&opts.output, "output", "o", config.DefaultOutput, "Output root containing the per-round tables")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, nil, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, fs.Args(), nil
}

func main() {
	opts, args, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if opts.help {
		printHelp(os.Stdout)
		return
	}

	root := opts.output
	if len(args) > 0 {
		root = args[0]
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger.Setup(level, os.Stderr, logger.IsTerminal(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, root, opts.format, os.Stdout)
	stop()
	os.Exit(code)
}

// run merges the tables below root and reports the result on out
func run(ctx context.Context, root, format string, out io.Writer) int {
	result, err := merge.Merge(ctx, root)
	if errors.Is(err, merge.ErrNoInput) {
		fmt.Fprintf(out, "Nothing to merge: %v\n", err)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error merging tables: %v\n", err)
		return 1
	}

	if err := outputResult(out, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		return 1
	}
	return 0
}

func outputResult(out io.Writer, result *merge.Result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "Merged %d file(s) into %s\n", len(result.Files), result.Path)
	fmt.Fprintf(out, "Rows: %d\n", len(result.Rows))
	for _, f := range result.Files {
		fmt.Fprintf(out, "  + %s\n", f)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(out, "  - %s: %s\n", s.Path, s.Reason)
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Quiz Merge - combine per-round quiz tables into quiz_total.csv")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every CSV below the output root is read; rows are merged by round and")
	fmt.Fprintln(w, "number, keeping the first non-empty value of each column.")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -o, --output    Output root (default ./output)")
	fmt.Fprintln(w, "      --format    Output format: text (default), json")
	fmt.Fprintln(w, "  -v, --verbose   Enable verbose output")
	fmt.Fprintln(w, "  -h, --help      Show this help message")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  quiz-merge [options] [output-root]")
}
