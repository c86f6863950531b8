package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all grading failure modes
type ErrorCode string

const (
	// ConfigError indicates malformed builder input, caught before any execution
	ConfigError ErrorCode = "CONFIG_ERROR"
	// NotFound indicates a missing project path
	NotFound ErrorCode = "NOT_FOUND"
	// TargetNotFound indicates a named file is absent from the project
	TargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	// DuplicateName indicates two indexed files share a logical name
	DuplicateName ErrorCode = "DUPLICATE_NAME"
	// ParseFailed indicates a source file could not be parsed when it was needed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// RuntimeUnavailable indicates the toolchain (compiler/runtime) is missing on the host
	RuntimeUnavailable ErrorCode = "RUNTIME_UNAVAILABLE"
	// CompileError indicates compilation failed; diagnostics are captured verbatim
	CompileError ErrorCode = "COMPILE_ERROR"
	// Timeout indicates a subprocess exceeded its wall-clock deadline
	Timeout ErrorCode = "TIMEOUT"
	// ReportParseError indicates test output could not be parsed into a report
	ReportParseError ErrorCode = "REPORT_PARSE_ERROR"
	// QueryInvalid indicates a structural query could not be compiled or run
	QueryInvalid ErrorCode = "QUERY_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
	Tool        string        `json:"tool,omitempty"`
}

// GradeError represents a grading error with a stable code and message
type GradeError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new GradeError
func New(code ErrorCode, message string, cause error) *GradeError {
	return &GradeError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new GradeError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *GradeError {
	return &GradeError{
		Code:           code,
		Message:        fmt.Sprintf(format, args...),
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *GradeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GradeError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *GradeError) WithDetails(details interface{}) *GradeError {
	e.Details = details
	return e
}

// CodeOf returns the error code carried by err, or InternalError if err is
// not a GradeError.
func CodeOf(err error) ErrorCode {
	var ge *GradeError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return InternalError
}

// AsGradeError extracts the GradeError in err's chain, if any.
func AsGradeError(err error) (*GradeError, bool) {
	var ge *GradeError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var ge *GradeError
	return errors.As(err, &ge) && ge.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	RuntimeUnavailable: {
		{
			Type:        InstallTool,
			Tool:        "jdk",
			Description: "Install a JDK so javac and java are on PATH",
			URL:         "https://adoptium.net",
		},
		{
			Type:        RunCommand,
			Command:     "autograde doctor",
			Safe:        true,
			Description: "Check toolchain configuration",
		},
	},
	NotFound: {
		{
			Type:        RunCommand,
			Command:     "autograde info",
			Safe:        true,
			Description: "List indexed project files",
		},
	},
	Timeout: {
		{
			Type:        RunCommand,
			Command:     "autograde grade --timeout 60s",
			Safe:        true,
			Description: "Retry with a longer run timeout",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
