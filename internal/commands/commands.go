// Package commands assembles the full command table.
package commands

import (
	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/commands/motion"
	"github.com/alexisbeaulieu97/megatron/internal/commands/sessioncmd"
)

// NewTable returns a table holding the session and motion families.
func NewTable() (*command.Table, error) {
	table := command.NewTable()
	if err := sessioncmd.Register(table); err != nil {
		return nil, err
	}
	if err := motion.Register(table); err != nil {
		return nil, err
	}
	return table, nil
}
