package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands. Every failure exits 1: the build scripts
// that call kgen only distinguish success from failure.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputFormatter handles text, JSON and YAML output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON/YAML envelope for CLI output.
type CLIResponse struct {
	Status string    `json:"status" yaml:"status"`                   // "ok" or "error"
	Data   any       `json:"data,omitempty" yaml:"data,omitempty"`   // success payload
	Error  *CLIError `json:"error,omitempty" yaml:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code" yaml:"code"`                           // "E001", "E002", etc.
	Message string `json:"message" yaml:"message"`                     // human-readable message
	Details any    `json:"details,omitempty" yaml:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. In text
// mode data is printed with fmt.Println, so payload types implement
// fmt.Stringer for their human-readable form.
func (f *OutputFormatter) Success(data any) error {
	switch f.Format {
	case FormatJSON:
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	case FormatYAML:
		return f.encodeYAML(CLIResponse{Status: "ok", Data: data})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format. Text errors go to
// ErrWriter; structured errors stay on Writer so the envelope is parseable.
func (f *OutputFormatter) Error(code, message string, details any) error {
	resp := CLIResponse{
		Status: "error",
		Error: &CLIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	switch f.Format {
	case FormatJSON:
		return json.NewEncoder(f.Writer).Encode(resp)
	case FormatYAML:
		return f.encodeYAML(resp)
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Failure outputs a result that is itself a failure, such as a schema with
// lint issues: structured formats carry both data and error, text prints
// data like Success.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	resp := CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	}
	switch f.Format {
	case FormatJSON:
		return json.NewEncoder(f.Writer).Encode(resp)
	case FormatYAML:
		return f.encodeYAML(resp)
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

func (f *OutputFormatter) encodeYAML(v any) error {
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
