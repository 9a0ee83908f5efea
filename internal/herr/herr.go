// Package herr defines the typed error taxonomy shared by every public
// operation in the orchestration core. Internal helpers still use plain
// wrapped errors (fmt.Errorf("...: %w", err)); only package-boundary
// functions return *herr.Error, per the "typed error sum for public APIs"
// guidance.
package herr

import "fmt"

// Kind identifies one of the error categories from the error taxonomy.
type Kind string

const (
	ProjectNotFound     Kind = "ProjectNotFound"
	AmbiguousProject    Kind = "AmbiguousProject"
	SimulatorNotFound   Kind = "SimulatorNotFound"
	PlanNotFound        Kind = "PlanNotFound"
	GeometryNotFound    Kind = "GeometryNotFound"
	UnsteadyNotFound    Kind = "UnsteadyNotFound"
	FlowNotFound        Kind = "FlowNotFound"
	ResultsNotAvailable Kind = "ResultsNotAvailable"
	ParseError          Kind = "ParseError"
	FormatViolation     Kind = "FormatViolation"
	IoError             Kind = "IoError"
	SimulatorExitNonZero Kind = "SimulatorExitNonZero"
	Timeout             Kind = "Timeout"
	BindingConflict     Kind = "BindingConflict"
)

// Error is the typed error value returned by every package-boundary
// operation. Path and Line are populated where applicable so the
// human-readable message carries file + line context per §7.
type Error struct {
	Kind    Kind
	Path    string // filesystem path, when applicable
	Line    int    // 1-based line number, when applicable; 0 if not applicable
	Text    string // offending text/snippet, when applicable
	Message string // short human summary
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s", e.Path)
		if e.Line > 0 {
			msg += fmt.Sprintf(", line=%d", e.Line)
		}
		msg += ")"
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" [%q]", e.Text)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithLine returns a copy of e with Line and Text set.
func (e *Error) WithLine(line int, text string) *Error {
	c := *e
	c.Line = line
	c.Text = text
	return &c
}

// Is reports whether err (or any error it wraps) is an *Error of kind k.
// Implements the errors.Is interface contract via a tree walk that does
// not require err to be exactly *Error — it compares Kind when it is.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == k {
				return true
			}
			err = e.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
