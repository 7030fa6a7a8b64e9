// Package sessioncmd implements the session family of script commands:
// flow control, device writes, waits, logging, plots and notifications.
package sessioncmd

import (
	"fmt"
	"strconv"

	"github.com/alexisbeaulieu97/megatron/internal/command"
)

// Register adds every session command to table.
func Register(table *command.Table) error {
	entries := []command.Entry{
		{Name: "email", MinArgs: 3, Usage: "email <subject> <message> <recipient>...", Handler: command.HandlerFunc(email)},
		{Name: "exit", Usage: "exit", Handler: command.HandlerFunc(exit)},
		{Name: "failif", MinArgs: 3, Usage: "failif <signal> <target> <script>", Handler: command.HandlerFunc(failIf)},
		{Name: "failifoff", MinArgs: 1, Usage: "failifoff <signal>", Handler: command.HandlerFunc(failIfOff)},
		{Name: "l", MinArgs: 2, Usage: "l <count> <command> [args...]", Handler: command.HandlerFunc(repeat)},
		{Name: "log", MinArgs: 1, Usage: "log <signal>", Handler: command.HandlerFunc(logSignal)},
		{Name: "lograte", MinArgs: 1, Usage: "lograte <seconds>", Handler: command.HandlerFunc(logRate)},
		{Name: "plot", MinArgs: 1, Usage: "plot dump | plot <signal>... [+x,y,w,h]", Handler: command.HandlerFunc(plotSignals)},
		{Name: "print", Usage: "print <text>...", Handler: command.HandlerFunc(printText)},
		{Name: "run", MinArgs: 1, Usage: "run <script>", Handler: command.HandlerFunc(run)},
		{Name: "set", MinArgs: 2, Usage: "set <device> <value>", Handler: command.HandlerFunc(set)},
		{Name: "setao", MinArgs: 2, Usage: "setao <setpoint> <float>", Handler: command.HandlerFunc(setAnalog)},
		{Name: "setdo", MinArgs: 2, Usage: "setdo <output> <int>", Handler: command.HandlerFunc(setDigital)},
		{Name: "stop", Usage: "stop", Handler: command.HandlerFunc(stop)},
		{Name: "t", MinArgs: 1, Usage: "t <seconds>", Handler: command.HandlerFunc(timer)},
		{Name: "var", MinArgs: 2, Usage: "var <name> <value>", Handler: command.HandlerFunc(setVar)},
		{Name: "waitai", MinArgs: 3, Usage: "waitai <signal> <op> <value> [tolerance] [timeout]", Handler: command.HandlerFunc(waitAnalog)},
		{Name: "waitdi", MinArgs: 2, Usage: "waitdi <signal> <int> [timeout]", Handler: command.HandlerFunc(waitDigital)},
	}

	for _, e := range entries {
		e.Family = command.FamilySession
		if err := table.Register(e); err != nil {
			return fmt.Errorf("register session commands: %w", err)
		}
	}
	return nil
}

// parseValue reads a set argument as an int when it is one, then as a float,
// and otherwise keeps the text.
func parseValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
