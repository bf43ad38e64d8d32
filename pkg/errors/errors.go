package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a malformed script file with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("script parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("script parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a single script validation issue: an unknown
// action name or a step whose params miss a required field.
type ValidationError struct {
	StepIndex int
	Action    string
	Message   string
}

// NewValidationError constructs a ValidationError for a step.
func NewValidationError(stepIndex int, action, message string) *ValidationError {
	return &ValidationError{StepIndex: stepIndex, Action: action, Message: message}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("validation error: step %d (%s): %s", e.StepIndex, e.Action, e.Message)
	}
	return fmt.Sprintf("validation error: step %d: %s", e.StepIndex, e.Message)
}

// ValidationErrors aggregates every validation issue found in a script so the
// caller sees the full list in one report rather than just the first failure.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors for errors.Is / errors.As matching.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// ExecutionError represents a runtime failure while executing a step or an
// imperative program body.
type ExecutionError struct {
	StepIndex int
	Action    string
	Err       error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(stepIndex int, action string, err error) error {
	return &ExecutionError{StepIndex: stepIndex, Action: action, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("execution error at step %d (%s): %v", e.StepIndex, e.Action, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AbortError marks an interactive run ended by an explicit user abort. It is
// not a defect, just a decision, so it stays distinct from ExecutionError.
type AbortError struct {
	StepIndex int
	Action    string
}

// NewAbortError constructs an AbortError.
func NewAbortError(stepIndex int, action string) error {
	return &AbortError{StepIndex: stepIndex, Action: action}
}

func (e *AbortError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("aborted by user at step %d (%s)", e.StepIndex, e.Action)
	}
	return "aborted by user"
}

// TemplateNotFoundError reports an unknown built-in template name. It is
// distinct from ParseError: the input was readable, the name just does not
// resolve to anything in the catalog.
type TemplateNotFoundError struct {
	Name string
}

// NewTemplateNotFoundError constructs a TemplateNotFoundError.
func NewTemplateNotFoundError(name string) error {
	return &TemplateNotFoundError{Name: name}
}

func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown template %q", e.Name)
}
