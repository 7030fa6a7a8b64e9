package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("session.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "session.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "session.yaml:12")
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("devices.Galil RBV", "references unknown signal", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "devices.Galil RBV", validationErr.Field)
	require.Contains(t, err.Error(), "references unknown signal")
}

func TestCommandNotFoundNamesCommand(t *testing.T) {
	t.Parallel()

	err := NewCommandNotFoundError("frobnicate")

	var notFound *CommandNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "frobnicate", notFound.Command)
	require.Contains(t, err.Error(), "frobnicate")
}

func TestLoopSyntaxErrorReportsLocation(t *testing.T) {
	t.Parallel()

	err := NewLoopSyntaxError("main.txt", 4)
	require.Equal(t, "loop syntax error: main.txt:4: loop is never closed with 'n'", err.Error())
}

func TestExecutionErrorUnwrapsControlFlow(t *testing.T) {
	t.Parallel()

	err := NewExecutionError("main.txt", 3, ErrStopScript)
	require.True(t, stdErrors.Is(err, ErrStopScript))
	require.True(t, IsControlFlow(err))
	require.False(t, IsControlFlow(NewTimeoutError("ION Current", time.Second, 1.5)))
}

func TestArgumentErrorWrapsCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("strconv.ParseFloat: invalid syntax")
	err := NewArgumentError("lograte", "rate must be numeric", cause)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, "lograte", argErr.Command)
	require.ErrorIs(t, err, cause)
}

func TestDiversionIsControlFlow(t *testing.T) {
	t.Parallel()

	err := NewExecutionError("main.txt", 2, NewDiversionError("/scripts/recover.txt"))

	var diversion *DiversionError
	require.ErrorAs(t, err, &diversion)
	require.Equal(t, "/scripts/recover.txt", diversion.Recovery)
	require.True(t, IsControlFlow(err))
}
