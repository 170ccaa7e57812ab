package model

import "fmt"

// ParseError is the fatal error for malformed input: broken containers,
// ill-formed XML, truncated binary streams. Offset is the byte position
// after which the input is no longer well-formed, relative to the part
// being parsed.
type ParseError struct {
	Offset int64
	Msg    string
	cause  error
}

// NewParseError builds a ParseError wrapping an underlying cause, which
// may be nil.
func NewParseError(offset int64, msg string, cause error) *ParseError {
	return &ParseError{Offset: offset, Msg: msg, cause: cause}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Offset, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.cause }

// MissingEntryError is the fatal error for an archive document whose
// required relationship-manifest entry is absent: without it the
// document's indirection cannot be trusted to resolve.
type MissingEntryError struct {
	Entry string
}

// Error implements the error interface.
func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("missing required archive entry: %s", e.Entry)
}

// EngineError wraps a failure from an external capability behind the
// binary document adapter. No engine-specific error type crosses the
// adapter boundary except through Unwrap.
type EngineError struct {
	Engine string
	cause  error
}

// NewEngineError wraps an external engine failure.
func NewEngineError(engine string, cause error) *EngineError {
	return &EngineError{Engine: engine, cause: cause}
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s engine: %v", e.Engine, e.cause)
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error { return e.cause }
