package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs comprehensive validation on a PDF file. Validation
// failures are reported in the result, not as errors.
func (v *Validator) ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{
		Path:  path,
		Valid: false,
	}

	pages, encrypted, err := v.inspect(path)
	result.Pages = pages
	result.Encrypted = encrypted
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	return result, nil
}

// Check returns an error describing why path cannot be extracted, or nil
func (v *Validator) Check(path string) error {
	_, _, err := v.inspect(path)
	return err
}

// inspect validates the file and returns its page count and encryption flag
func (v *Validator) inspect(filePath string) (int, bool, error) {
	if filePath == "" {
		return 0, false, fmt.Errorf("path cannot be empty")
	}

	// Check if file exists and get basic info
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, false, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return 0, false, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, false, err
	}

	// Try to open the PDF with the layout reader
	f, _, err := openReader(filePath)
	if err != nil {
		return 0, false, fmt.Errorf("invalid PDF file: %w", err)
	}
	f.Close()

	return v.readContext(filePath)
}

// readContext cross-checks the file structure with pdfcpu in relaxed mode
func (v *Validator) readContext(filePath string) (int, bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, false, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, false, fmt.Errorf("invalid PDF structure: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, false, fmt.Errorf("failed to determine page count: %w", err)
	}

	// Encrypted files are reported, not rejected: the layout reader opened it.
	encrypted := ctx.Encrypt != nil
	if ctx.PageCount == 0 {
		return 0, encrypted, fmt.Errorf("PDF has no pages: %s", filePath)
	}
	return ctx.PageCount, encrypted, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.Check(filePath) == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
