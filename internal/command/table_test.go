package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

func recordingEntry(name string, family Family, minArgs int, calls *[]Invocation) Entry {
	return Entry{
		Name:    name,
		Family:  family,
		MinArgs: minArgs,
		Usage:   name + " <arg>",
		Handler: HandlerFunc(func(_ context.Context, inv Invocation, _ *Env) error {
			*calls = append(*calls, inv)
			return nil
		}),
	}
}

func TestRegisterAndDispatch(t *testing.T) {
	t.Parallel()

	var calls []Invocation
	table := NewTable()
	require.NoError(t, table.Register(recordingEntry("Print", FamilySession, 0, &calls)))

	inv := Invocation{Name: "PRINT", Args: []string{"hello"}}
	require.NoError(t, table.Dispatch(context.Background(), inv, &Env{}))
	require.Equal(t, []Invocation{inv}, calls)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()

	var calls []Invocation
	table := NewTable()
	require.NoError(t, table.Register(recordingEntry("set", FamilySession, 2, &calls)))
	require.ErrorContains(t, table.Register(recordingEntry("SET", FamilySession, 2, &calls)), "already registered")
}

func TestRegisterRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	table := NewTable()
	require.Error(t, table.Register(Entry{Name: "x"}))
	require.Error(t, table.Register(Entry{Handler: HandlerFunc(nil)}))
}

func TestDispatchUnknownCommand(t *testing.T) {
	t.Parallel()

	err := NewTable().Dispatch(context.Background(), Invocation{Name: "frobnicate"}, &Env{})

	var notFound *megaerrors.CommandNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "frobnicate", notFound.Command)
}

func TestDispatchChecksArgumentCount(t *testing.T) {
	t.Parallel()

	var calls []Invocation
	table := NewTable()
	require.NoError(t, table.Register(recordingEntry("failif", FamilySession, 3, &calls)))

	err := table.Dispatch(context.Background(), Invocation{Name: "failif", Args: []string{"ION Current"}}, &Env{})

	var argErr *megaerrors.ArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, "failif", argErr.Command)
	require.Empty(t, calls)
}

func TestNamesByFamily(t *testing.T) {
	t.Parallel()

	var calls []Invocation
	table := NewTable()
	require.NoError(t, table.Register(recordingEntry("tp", FamilyMotion, 0, &calls)))
	require.NoError(t, table.Register(recordingEntry("bg", FamilyMotion, 0, &calls)))
	require.NoError(t, table.Register(recordingEntry("run", FamilySession, 1, &calls)))

	require.Equal(t, []string{"bg", "tp"}, table.Names(FamilyMotion))
	require.Equal(t, []string{"bg", "run", "tp"}, table.Names(""))
}

func TestWithScriptCopies(t *testing.T) {
	t.Parallel()

	env := &Env{Script: "main.txt"}
	sub := env.WithScript("sub.txt")
	require.Equal(t, "main.txt", env.Script)
	require.Equal(t, "sub.txt", sub.Script)
}
