package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-quiz-extractor/internal/config"
	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/merge"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf"
	"github.com/a3tai/mcp-quiz-extractor/internal/quiz"
)

// Logger is the MCP module logger
var Logger = logger.Get("mcp")

// maxListedFiles caps the file listing in quiz_server_info
const maxListedFiles = 10

// Tool describes one registered tool for quiz_server_info
type Tool struct {
	Name        string
	Description string
	Parameters  string
}

// Tools lists the tools the server registers, in registration order
var Tools = []Tool{
	{
		Name:        "quiz_extract_file",
		Description: "Extract questions or answers from one exam PDF into per-round CSV files and images",
		Parameters:  "path (required): full path to the PDF file",
	},
	{
		Name:        "quiz_extract_directory",
		Description: "Extract every exam PDF found in a directory, optionally merging the results",
		Parameters:  "directory (optional): directory to scan, defaults to the configured one; query (optional): file name filter; merge (optional): run quiz_merge afterwards",
	},
	{
		Name:        "quiz_merge",
		Description: "Merge all per-round CSV files under the output root into quiz_total.csv",
		Parameters:  "none",
	},
	{
		Name:        "quiz_server_info",
		Description: "Get server information, configured directories and available tools",
		Parameters:  "none",
	},
}

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	extractor  *quiz.Extractor
	mcpServer  *server.MCPServer

	// runs serializes extraction and merge, which share the output root
	runs sync.Mutex
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, extractor *quiz.Extractor) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		extractor:  extractor,
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		Tools[0].Name,
		mcp.WithDescription(Tools[0].Description),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractDirectoryTool := mcp.NewTool(
		Tools[1].Name,
		mcp.WithDescription(Tools[1].Description),
		mcp.WithString("directory",
			mcp.Description("Directory path to scan (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive file name filter"),
		),
		mcp.WithBoolean("merge",
			mcp.Description("Merge all tables into quiz_total.csv afterwards"),
		),
	)
	s.mcpServer.AddTool(extractDirectoryTool, s.handleExtractDirectory)

	mergeTool := mcp.NewTool(
		Tools[2].Name,
		mcp.WithDescription(Tools[2].Description),
	)
	s.mcpServer.AddTool(mergeTool, s.handleMerge)

	serverInfoTool := mcp.NewTool(
		Tools[3].Name,
		mcp.WithDescription(Tools[3].Description),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.runs.Lock()
	defer s.runs.Unlock()

	result, err := s.extractor.ProcessFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed for %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(formatFileResult(result)), nil
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.InputDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}
	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}
	doMerge := false
	if m, ok := args["merge"].(bool); ok {
		doMerge = m
	}

	found, err := s.pdfService.SearchDirectory(directory, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if found.TotalCount == 0 {
		text := fmt.Sprintf("No PDF files found in directory: %s", found.Directory)
		if found.SearchQuery != "" {
			text += fmt.Sprintf(" (searched for: %s)", found.SearchQuery)
		}
		return mcp.NewToolResultText(text), nil
	}

	paths := make([]string, 0, len(found.Files))
	for _, f := range found.Files {
		paths = append(paths, f.Path)
	}

	s.runs.Lock()
	defer s.runs.Unlock()

	results, runErr := s.extractor.ProcessAll(ctx, paths)
	text := formatBatchResult(found.Directory, results, runErr)
	if runErr != nil {
		return mcp.NewToolResultError(text), nil
	}

	if doMerge {
		merged, err := merge.Merge(ctx, s.extractor.OutputRoot())
		if err != nil {
			return mcp.NewToolResultError(text + "\nMerge failed: " + err.Error()), nil
		}
		text += "\n" + formatMergeResult(merged)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleMerge(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.runs.Lock()
	defer s.runs.Unlock()

	result, err := merge.Merge(ctx, s.extractor.OutputRoot())
	if err != nil {
		if stderrors.Is(err, merge.ErrNoInput) {
			return mcp.NewToolResultText(fmt.Sprintf("Nothing to merge: %v", err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMergeResult(result)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Input Directory: %s\n", s.config.InputDirectory)
	text += fmt.Sprintf("📤 Output Root: %s\n", s.extractor.OutputRoot())
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	found, err := s.pdfService.SearchDirectory(s.config.InputDirectory, "")
	switch {
	case err != nil:
		text += fmt.Sprintf("📂 Directory Contents: unavailable (%v)\n\n", err)
	case found.TotalCount == 0:
		text += "📂 Directory Contents: No PDF files found in input directory\n\n"
	default:
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", found.TotalCount)
		for i, file := range found.Files {
			if i >= maxListedFiles {
				text += fmt.Sprintf("   ... and %d more files\n", found.TotalCount-maxListedFiles)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range Tools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\nQuestion papers produce quiz_question_<round>.csv plus images/, " +
		"answer keys produce quiz_answer_<round>.csv. Run quiz_merge to combine them.\n"
	return mcp.NewToolResultText(text), nil
}

// Formatting helpers

func formatFileResult(r *quiz.FileResult) string {
	text := fmt.Sprintf("Processed %s\n", r.Path)
	text += fmt.Sprintf("Round: %s\n", r.Round)
	text += fmt.Sprintf("Kind: %s\n", r.Kind)
	text += fmt.Sprintf("Pages: %d\n", r.Pages)
	text += fmt.Sprintf("Output: %s\n", r.OutputDir)
	if r.CSVPath != "" {
		text += fmt.Sprintf("CSV: %s\n", r.CSVPath)
	}
	switch r.Kind {
	case quiz.KindAnswers:
		text += fmt.Sprintf("Answers: %d\n", len(r.Answers))
	default:
		text += fmt.Sprintf("Questions: %d\n", len(r.Questions))
		if len(r.Skipped) > 0 {
			nums := make([]string, 0, len(r.Skipped))
			for _, sk := range r.Skipped {
				nums = append(nums, fmt.Sprint(sk.Number))
			}
			text += fmt.Sprintf("Skipped questions: %s\n", strings.Join(nums, ", "))
		}
	}
	if r.Errors != nil {
		text += r.Errors.Summary() + "\n"
		for _, e := range r.Errors.Errors {
			text += fmt.Sprintf("  error: %v\n", e)
		}
		for _, w := range r.Errors.Warnings {
			text += fmt.Sprintf("  warning: %v\n", w)
		}
	}
	return text
}

func formatBatchResult(directory string, results []*quiz.FileResult, runErr error) string {
	questions, answers := quiz.Totals(results)
	text := fmt.Sprintf("Processed %d file(s) from %s\n", len(results), directory)
	text += fmt.Sprintf("Total questions: %d, total answers: %d\n", questions, answers)
	for i, r := range results {
		if r == nil {
			continue
		}
		line := fmt.Sprintf("%d. %s: round %s, %s", i+1, filepath.Base(r.Path), r.Round, r.Kind)
		if r.Kind == quiz.KindAnswers {
			line += fmt.Sprintf(", %d answers", len(r.Answers))
		} else {
			line += fmt.Sprintf(", %d questions", len(r.Questions))
		}
		if r.Errors != nil {
			if e, w := r.Errors.Count(); e+w > 0 {
				line += ", " + r.Errors.Summary()
			}
		}
		text += line + "\n"
	}
	if runErr != nil {
		text += fmt.Sprintf("\nStopped: %v\n", runErr)
	}
	return text
}

func formatMergeResult(r *merge.Result) string {
	text := fmt.Sprintf("Merged %d file(s) into %s\n", len(r.Files), r.Path)
	text += fmt.Sprintf("Rows: %d\n", len(r.Rows))
	for _, sk := range r.Skipped {
		text += fmt.Sprintf("  skipped %s: %s\n", sk.Path, sk.Reason)
	}
	return text
}

// Run serves MCP over stdio until the client disconnects
func (s *Server) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	Logger.Info("starting MCP server in stdio mode",
		"input", s.config.InputDirectory,
		"output", s.extractor.OutputRoot())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
