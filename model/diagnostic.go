package model

// DiagnosticKind classifies a non-fatal observation recorded during a
// scrape.
type DiagnosticKind int

const (
	// DiagParseError records a parse problem in a candidate that was
	// discarded by the any-format dispatcher; within a single format's
	// scrape, parse errors are fatal and surface as *ParseError instead.
	DiagParseError DiagnosticKind = iota
	// DiagDanglingReference records a relationship ID with no entry in
	// the document's relationship manifest.
	DiagDanglingReference
	// DiagValidationWarning records a violated XLink structural rule.
	DiagValidationWarning
	// DiagExternalEngineError records a wrapped failure from an external
	// capability (PDF engine, EXIF decoder).
	DiagExternalEngineError
	// DiagDetectionFailure records that no format candidate succeeded.
	DiagDetectionFailure
)

// String returns the string representation of the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagParseError:
		return "ParseError"
	case DiagDanglingReference:
		return "DanglingReference"
	case DiagValidationWarning:
		return "ValidationWarning"
	case DiagExternalEngineError:
		return "ExternalEngineError"
	case DiagDetectionFailure:
		return "DetectionFailure"
	default:
		return "Unknown"
	}
}

// Diagnostic is a recorded observation about degraded or questionable
// input, distinct from a fatal error. Diagnostics are additive: once
// recorded they are never dropped.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Location Location       `json:"location"`
	Message  string         `json:"message"`
}

// String formats the diagnostic for log output.
func (d Diagnostic) String() string {
	if d.Location == nil {
		return d.Kind.String() + ": " + d.Message
	}
	return d.Kind.String() + " at " + d.Location.String() + ": " + d.Message
}

// Diagnostics collects diagnostics for a single scrape call. Scrapers
// that produce links lazily may append entries while their sequence is
// being consumed, so callers should read All after draining the
// sequence. A nil collector discards entries.
type Diagnostics struct {
	entries []Diagnostic
}

// Add records a diagnostic.
func (d *Diagnostics) Add(kind DiagnosticKind, loc Location, msg string) {
	if d == nil {
		return
	}
	d.entries = append(d.entries, Diagnostic{Kind: kind, Location: loc, Message: msg})
}

// Merge appends all entries from other.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if d == nil || other == nil {
		return
	}
	d.entries = append(d.entries, other.entries...)
}

// All returns the recorded diagnostics in order.
func (d *Diagnostics) All() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.entries
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
