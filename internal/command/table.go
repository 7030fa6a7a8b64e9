package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Table maps lower-case command names to entries.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Register adds an entry. Registering a name twice is an error.
func (t *Table) Register(e Entry) error {
	name := strings.ToLower(strings.TrimSpace(e.Name))
	if name == "" {
		return fmt.Errorf("command name is empty")
	}
	if e.Handler == nil {
		return fmt.Errorf("command '%s' has no handler", name)
	}
	e.Name = name

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	t.entries[name] = e
	return nil
}

// Lookup resolves a command name case-insensitively.
func (t *Table) Lookup(name string) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[strings.ToLower(name)]
	if !ok {
		return Entry{}, megaerrors.NewCommandNotFoundError(name)
	}
	return e, nil
}

// Dispatch looks up inv.Name, checks the argument count and runs the handler.
func (t *Table) Dispatch(ctx context.Context, inv Invocation, env *Env) error {
	e, err := t.Lookup(inv.Name)
	if err != nil {
		return err
	}
	if len(inv.Args) < e.MinArgs {
		msg := fmt.Sprintf("expected at least %d argument(s)", e.MinArgs)
		if e.Usage != "" {
			msg += ", usage: " + e.Usage
		}
		return megaerrors.NewArgumentError(e.Name, msg, nil)
	}
	return e.Handler.Execute(ctx, inv, env)
}

// Names lists registered names of a family, or of every family when family
// is empty, in sorted order.
func (t *Table) Names(family Family) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries))
	for name, e := range t.entries {
		if family == "" || e.Family == family {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
