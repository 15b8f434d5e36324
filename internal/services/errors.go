package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// ErrorKind groups failures by the taxonomy operators act on.
type ErrorKind string

const (
	ErrorKindMissingInput ErrorKind = "missing_input"
	ErrorKindExternal     ErrorKind = "external"
	ErrorKindData         ErrorKind = "data"
	ErrorKindConfig       ErrorKind = "config"
	ErrorKindIO           ErrorKind = "io"
)

// ServiceError carries a marker plus an optional pointer to captured tool output.
type ServiceError struct {
	Marker     error
	Kind       ErrorKind
	Operation  string
	Message    string
	DetailPath string
	Cause      error
}

func (e *ServiceError) Error() string {
	parts := make([]string, 0, 4)
	if e.Marker != nil {
		parts = append(parts, e.Marker.Error())
	}
	if detail := buildDetail("", e.Operation, e.Message); detail != "service failure" {
		parts = append(parts, detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	msg := strings.Join(parts, ": ")
	if e.DetailPath != "" {
		msg += fmt.Sprintf(" (details: %s)", e.DetailPath)
	}
	return msg
}

func (e *ServiceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Marker != nil {
		errs = append(errs, e.Marker)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind classifies err against the sentinel markers.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ErrorKindMissingInput
	case errors.Is(err, ErrExternalTool):
		return ErrorKindExternal
	case errors.Is(err, ErrValidation):
		return ErrorKindData
	case errors.Is(err, ErrConfiguration):
		return ErrorKindConfig
	default:
		return ErrorKindIO
	}
}

// Marked reports whether err already carries one of the sentinel markers.
func Marked(err error) bool {
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTransient} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

// ExitCode maps a command failure to the process exit status. Every failure
// exits 1; there are no custom codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
