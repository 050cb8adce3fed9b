// Package errors types the failures met while extracting quizzes so that
// recoverable events can be collected per file instead of aborting it.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// PDFError is a failure tied to a file, page or question
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Question    int       `json:"question,omitempty"`

	cause error
}

// ErrorType categorizes extraction failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidFile
	ErrorTypeOpenFailed
	ErrorTypeOptionText
	ErrorTypeOptionImage
	ErrorTypeStemImage
	ErrorTypeTrim
	ErrorTypeInsufficientMarkers
	ErrorTypeDegenerateStem
	ErrorTypeAnswerPairing
	ErrorTypeWrite
	ErrorTypeDegenerateRegion
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (e *PDFError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if e.Question > 0 {
		fmt.Fprintf(&b, " (question %d)", e.Question)
	}
	if e.Context != "" {
		b.WriteString(": ")
		b.WriteString(e.Context)
	}
	return b.String()
}

// Unwrap returns the wrapped cause, if any
func (e *PDFError) Unwrap() error {
	return e.cause
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidFile:
		return "INVALID_FILE"
	case ErrorTypeOpenFailed:
		return "OPEN_FAILED"
	case ErrorTypeOptionText:
		return "OPTION_TEXT"
	case ErrorTypeOptionImage:
		return "OPTION_IMAGE"
	case ErrorTypeStemImage:
		return "STEM_IMAGE"
	case ErrorTypeTrim:
		return "TRIM"
	case ErrorTypeInsufficientMarkers:
		return "INSUFFICIENT_MARKERS"
	case ErrorTypeDegenerateStem:
		return "DEGENERATE_STEM"
	case ErrorTypeAnswerPairing:
		return "ANSWER_PAIRING"
	case ErrorTypeWrite:
		return "WRITE"
	case ErrorTypeDegenerateRegion:
		return "DEGENERATE_REGION"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeInvalidFile, ErrorTypeOpenFailed, ErrorTypeStemImage, ErrorTypeWrite:
		return SeverityFatal
	case ErrorTypeOptionText, ErrorTypeOptionImage:
		return SeverityError
	case ErrorTypeTrim, ErrorTypeInsufficientMarkers, ErrorTypeDegenerateRegion, ErrorTypeAnswerPairing:
		return SeverityWarning
	case ErrorTypeDegenerateStem:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether processing of the file continues after an
// error of this type
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeInvalidFile, ErrorTypeOpenFailed, ErrorTypeStemImage, ErrorTypeWrite:
		return false
	case ErrorTypeUnknown:
		return false
	default:
		return true
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// WrapError wraps err as a PDFError of the given type
func WrapError(errorType ErrorType, err error) *PDFError {
	e := NewPDFError(errorType, err.Error())
	e.cause = err
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// WithQuestion attaches the question number the error belongs to
func (e *PDFError) WithQuestion(number int) *PDFError {
	e.Question = number
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsFatal returns true if the error ends processing of its file
func (e *PDFError) IsFatal() bool {
	return e.GetSeverity() == SeverityFatal
}

// ErrorCollection gathers the errors of one file
type ErrorCollection struct {
	Errors   []*PDFError `json:"errors"`
	Warnings []*PDFError `json:"warnings"`
	FilePath string      `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*PDFError, 0),
		Warnings: make([]*PDFError, 0),
		FilePath: filePath,
	}
}

// Add adds an error to the appropriate list based on severity
func (ec *ErrorCollection) Add(err *PDFError) {
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}

	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		ec.Warnings = append(ec.Warnings, err)
	} else {
		ec.Errors = append(ec.Errors, err)
	}
}

// HasFatalErrors returns true if any collected error is fatal
func (ec *ErrorCollection) HasFatalErrors() bool {
	for _, err := range ec.Errors {
		if err.IsFatal() {
			return true
		}
	}
	return false
}

// ByType returns every collected error or warning of the given type
func (ec *ErrorCollection) ByType(t ErrorType) []*PDFError {
	var out []*PDFError
	for _, list := range [][]*PDFError{ec.Errors, ec.Warnings} {
		for _, err := range list {
			if err.Type == t {
				out = append(out, err)
			}
		}
	}
	return out
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}

	summary := fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)
	if ec.HasFatalErrors() {
		summary += " (including fatal errors)"
	}
	return summary
}
