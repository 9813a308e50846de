package schema

import "fmt"

// Error codes for schema loading, shared with the CLI's JSON output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Schema path not found
	ErrCodeFormat      = "E003" // Unsupported schema format
	ErrCodeLoadFailed  = "E004" // Front-end could not load the files
	ErrCodeBuildFailed = "E005" // Front-end could not evaluate the files
	ErrCodeInvalidType = "E101" // Unknown symbol type
	ErrCodeExpression  = "E102" // Malformed condition or default expression
	ErrCodeDefault     = "E103" // Default entry has neither or both of value/expr
	ErrCodeField       = "E104" // Field has the wrong kind
)

// LoadError is a fatal schema problem with an optional source position.
type LoadError struct {
	Code    string
	Message string
	Pos     Position
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
