package script

import (
	"sort"
	"strings"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Report summarises a static pass over a script and the scripts it runs.
type Report struct {
	Scripts       []string
	LoggedSignals []string
	Problems      []error
}

// Check walks path and every script reachable through "run", collecting the
// signals named by "log" and any unmatched loops. Each script is visited once.
func Check(root, path string) (*Report, error) {
	visited := make(map[string]bool)
	logged := make(map[string]bool)
	report := &Report{}

	var walk func(p string) error
	walk = func(p string) error {
		if visited[p] {
			return nil
		}
		visited[p] = true

		s, err := Load(p)
		if err != nil {
			return err
		}
		report.Scripts = append(report.Scripts, p)

		for i, raw := range s.Lines {
			if Classify(raw) == KindLoopOpen {
				if _, ok := FindLoopEnd(s.Lines, i); !ok {
					report.Problems = append(report.Problems, megaerrors.NewLoopSyntaxError(p, i+1))
				}
				continue
			}

			inst, err := Parse(raw)
			if err != nil {
				report.Problems = append(report.Problems, megaerrors.NewExecutionError(p, i+1, err))
				continue
			}
			if inst.Kind != KindCommand || len(inst.Args) == 0 {
				continue
			}

			switch inst.Command {
			case "log":
				logged[strings.Trim(inst.Args[0], `"`)] = true
			case "run":
				if err := walk(Resolve(root, inst.Args[0])); err != nil {
					report.Problems = append(report.Problems, megaerrors.NewExecutionError(p, i+1, err))
				}
			}
		}
		return nil
	}

	if err := walk(path); err != nil {
		return nil, err
	}

	for name := range logged {
		report.LoggedSignals = append(report.LoggedSignals, name)
	}
	sort.Strings(report.LoggedSignals)
	return report, nil
}
