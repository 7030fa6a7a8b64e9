package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// ErrStopScript is raised by the stop command. It unwinds to the nearest
// enclosing script invocation only.
var ErrStopScript = stdErrors.New("script stopped")

// ErrExitSession is raised by the exit command and terminates the whole session.
var ErrExitSession = stdErrors.New("session exit requested")

// ParseError represents a failure to read or decode a file, with optional line metadata.
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
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures session configuration issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CommandNotFoundError is reported when a script line names an unregistered command.
type CommandNotFoundError struct {
	Command string
}

// NewCommandNotFoundError constructs a CommandNotFoundError.
func NewCommandNotFoundError(command string) error {
	return &CommandNotFoundError{Command: command}
}

func (e *CommandNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("command not found: %q", e.Command)
}

// LoopSyntaxError is reported when a loop-open line has no matching close.
type LoopSyntaxError struct {
	Script string
	Line   int
}

// NewLoopSyntaxError constructs a LoopSyntaxError. Line is 1-based.
func NewLoopSyntaxError(script string, line int) error {
	return &LoopSyntaxError{Script: script, Line: line}
}

func (e *LoopSyntaxError) Error() string {
	if e == nil {
		return ""
	}
	if e.Script != "" {
		return fmt.Sprintf("loop syntax error: %s:%d: loop is never closed with 'n'", e.Script, e.Line)
	}
	return fmt.Sprintf("loop syntax error: line %d: loop is never closed with 'n'", e.Line)
}

// ArgumentError captures malformed or missing command arguments.
type ArgumentError struct {
	Command string
	Message string
	Err     error
}

// NewArgumentError constructs an ArgumentError.
func NewArgumentError(command, message string, err error) error {
	return &ArgumentError{Command: command, Message: message, Err: err}
}

func (e *ArgumentError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Command, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ArgumentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigurationError indicates a command referenced a device or setting the
// session does not provide.
type ConfigurationError struct {
	Name    string
	Message string
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(name, message string) error {
	return &ConfigurationError{Name: name, Message: message}
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name != "" {
		return fmt.Sprintf("configuration error [%s]: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// TimeoutError is returned when a wait condition is not met before its deadline.
type TimeoutError struct {
	Signal  string
	Timeout time.Duration
	Last    any
}

// NewTimeoutError constructs a TimeoutError.
func NewTimeoutError(signal string, timeout time.Duration, last any) error {
	return &TimeoutError{Signal: signal, Timeout: timeout, Last: last}
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("timeout after %s waiting on %s (last value %v)", e.Timeout, e.Signal, e.Last)
}

// ExecutionError wraps a failure raised while executing one script line.
type ExecutionError struct {
	Script string
	Line   int
	Err    error
}

// NewExecutionError constructs an ExecutionError. Line is 1-based.
func NewExecutionError(script string, line int, err error) error {
	return &ExecutionError{Script: script, Line: line, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Script != "" {
		return fmt.Sprintf("execution error at %s:%d: %v", e.Script, e.Line, e.Err)
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

// DiversionError unwinds every script frame so the session can continue with
// a recovery script.
type DiversionError struct {
	Recovery string
}

// NewDiversionError constructs a DiversionError.
func NewDiversionError(recovery string) error {
	return &DiversionError{Recovery: recovery}
}

func (e *DiversionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("diverting to %s", e.Recovery)
}

// IsControlFlow reports whether err is a stop, exit or diversion rather than a failure.
func IsControlFlow(err error) bool {
	var diversion *DiversionError
	return stdErrors.Is(err, ErrStopScript) || stdErrors.Is(err, ErrExitSession) || stdErrors.As(err, &diversion)
}
