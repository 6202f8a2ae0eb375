package errors

import "maps"

// ErrorCategory groups errors by what went wrong and decides the CLI exit code.
type ErrorCategory string

const (
	// Configuration and input.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryIntegrity marks course data that cannot be turned into a tree
	// (dangling parents, parent cycles, missing course home).
	CategoryIntegrity ErrorCategory = "integrity"
	// CategoryContent marks recoverable content defects. These are logged,
	// not returned.
	CategoryContent ErrorCategory = "content"

	// Remote object storage and brokers.
	CategorySync    ErrorCategory = "sync"
	CategoryNetwork ErrorCategory = "network"

	// Output.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryPublish    ErrorCategory = "publish"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the command
	SeverityError   ErrorSeverity = "error"   // Fails one course or run
	SeverityWarning ErrorSeverity = "warning" // Degraded output
)

// ErrorContext carries structured key/value details.
type ErrorContext map[string]any

// Set adds or updates a value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns a string value; non-string values report false.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

func (c ErrorContext) clone() ErrorContext {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}
