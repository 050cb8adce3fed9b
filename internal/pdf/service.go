package pdf

import (
	"fmt"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/security"
)

// Service handles PDF file operations by orchestrating the validator, the
// search handler and the layout reader.
type Service struct {
	maxFileSize   int64
	wordTolerance float64
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service. When configuredDirectory is not
// empty every path handed to the service must lie inside it.
func NewService(maxFileSize int64, configuredDirectory string) (*Service, error) {
	s := &Service{
		maxFileSize:   maxFileSize,
		wordTolerance: DefaultWordTolerance,
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
	}

	if configuredDirectory != "" {
		pathValidator, err := security.NewPathValidator(configuredDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to create path validator: %w", err)
		}
		s.pathValidator = pathValidator
	}
	return s, nil
}

// SetWordTolerance changes the tolerance used by documents opened afterwards
func (s *Service) SetWordTolerance(tol float64) {
	s.wordTolerance = tol
}

// MaxFileSize returns the configured file size limit
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// ConfiguredDirectory returns the directory paths are confined to, or ""
func (s *Service) ConfiguredDirectory() string {
	if s.pathValidator == nil {
		return ""
	}
	return s.pathValidator.GetConfiguredDirectory()
}

func (s *Service) checkPath(path string) error {
	if s.pathValidator == nil {
		return nil
	}
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return fmt.Errorf("security validation failed: %w", err)
	}
	return nil
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(path string) (*ValidationResult, error) {
	if err := s.checkPath(path); err != nil {
		return nil, err
	}
	return s.validator.ValidateFile(path)
}

// OpenDocument validates path and opens it for layout extraction
func (s *Service) OpenDocument(path string) (*Document, error) {
	if err := s.checkPath(path); err != nil {
		return nil, err
	}
	if err := s.validator.Check(path); err != nil {
		return nil, err
	}
	return Open(path, WithWordTolerance(s.wordTolerance))
}

// SearchDirectory searches for PDF files in a directory. An empty directory
// means the configured one.
func (s *Service) SearchDirectory(directory, query string) (*SearchResult, error) {
	if directory == "" {
		directory = s.ConfiguredDirectory()
	}
	if err := s.checkPath(directory); err != nil {
		return nil, err
	}
	return s.search.SearchDirectory(directory, query)
}

// ExpandInputs resolves files and directories into the PDF files to process
func (s *Service) ExpandInputs(args []string) ([]string, error) {
	for _, arg := range args {
		if err := s.checkPath(arg); err != nil {
			return nil, err
		}
	}
	return s.search.ExpandInputs(args)
}
