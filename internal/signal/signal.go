// Package signal defines the capability surface the runtime needs from a live
// device value, plus an in-memory backend used for simulation and tests.
package signal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Token identifies one subscription on a Signal.
type Token uint64

// Callback receives each new value published by a Signal. Callbacks must not block.
type Callback func(value any)

// Signal is an addressable live value on a device.
type Signal interface {
	Name() string
	Get() (any, error)
	Set(ctx context.Context, value any) error
	Subscribe(cb Callback) Token
	Unsubscribe(token Token)
}

// Float converts a signal value to float64.
func Float(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is nil")
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
}

// Format renders a value the way data logs expect: floats with six decimals,
// everything else in its natural text form.
func Format(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 6, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', 6, 32)
	default:
		return fmt.Sprint(v)
	}
}
