package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/megatron/internal/command"
)

func TestNewTableRegistersBothFamilies(t *testing.T) {
	t.Parallel()

	table, err := NewTable()
	require.NoError(t, err)

	require.Equal(t, []string{
		"email", "exit", "failif", "failifoff", "l", "log", "lograte", "plot", "print",
		"run", "set", "setao", "setdo", "stop", "t", "var", "waitai", "waitdi",
	}, table.Names(command.FamilySession))

	require.Equal(t, []string{
		"ac", "af", "ba", "bg", "bi", "bl", "bm", "bt", "bz", "cc", "ce", "cn", "dc", "dp",
		"er", "fa", "fe", "fl", "fv", "hm", "hv", "ib", "iht", "il", "kd", "ki", "kp", "ld",
		"mo", "mt", "op", "pa", "pr", "pv", "sc", "sh", "sp", "st", "ta", "tp", "xq",
	}, table.Names(command.FamilyMotion))
}
