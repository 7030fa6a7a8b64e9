package config

import (
	"fmt"
	"sort"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// ValidateConfig performs structural and cross-field validation on an entire configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return megaerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(cfg.Signals))
	for i, sig := range cfg.Signals {
		if _, exists := seen[sig.Path]; exists {
			return megaerrors.NewValidationError(fieldForSignal(i, "path"), fmt.Sprintf("duplicate signal path %q", sig.Path), nil)
		}
		seen[sig.Path] = i

		if err := validateInitial(sig); err != nil {
			return megaerrors.NewValidationError(fieldForSignal(i, "initial"), err.Error(), nil)
		}
	}

	names := make([]string, 0, len(cfg.Devices))
	for name := range cfg.Devices {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := cfg.Devices[name]
		if _, ok := seen[path]; !ok {
			return megaerrors.NewValidationError("devices."+name, fmt.Sprintf("references unknown signal %q", path), nil)
		}
	}

	return nil
}

func validateInitial(sig SignalSpec) error {
	if sig.Initial == nil {
		return nil
	}
	switch sig.Kind {
	case "analog":
		switch sig.Initial.(type) {
		case int, float64:
			return nil
		}
		return fmt.Errorf("analog signal %q needs a numeric initial value", sig.Path)
	case "digital":
		if _, ok := sig.Initial.(int); ok {
			return nil
		}
		return fmt.Errorf("digital signal %q needs an integer initial value", sig.Path)
	}
	return nil
}
