package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDocument marks structural problems in a tree document.
var ErrInvalidDocument = errors.New("invalid tree document")

// Issue is a single problem found in a document, located by the address
// of the offending node (or empty for document-level problems).
type Issue struct {
	Path string
	Err  error
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Err.Error()
	}
	return fmt.Sprintf("%s: %v", i.Path, i.Err)
}

// ValidationError collects every issue found while decoding or validating
// a document.
type ValidationError struct {
	Issues []Issue
}

// Add records an issue.
func (e *ValidationError) Add(path string, err error) {
	e.Issues = append(e.Issues, Issue{Path: path, Err: err})
}

// Addf records an issue wrapping sentinel with a formatted message.
func (e *ValidationError) Addf(path string, sentinel error, format string, args ...any) {
	e.Add(path, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

// ErrOrNil returns e when it holds at least one issue.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("tree validation failed:\n- %s", strings.Join(lines, "\n- "))
}

// Unwrap exposes the individual issue errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		errs[i] = issue.Err
	}
	return errs
}
