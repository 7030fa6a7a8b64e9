// Package wait blocks until a signal satisfies a comparison against a target.
package wait

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/signal"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// DefaultPoll is the resample interval used when Options.Poll is zero.
const DefaultPoll = 50 * time.Millisecond

// Operator is a comparison operator.
type Operator string

const (
	Equal        Operator = "=="
	NotEqual     Operator = "!="
	Less         Operator = "<"
	LessEqual    Operator = "<="
	Greater      Operator = ">"
	GreaterEqual Operator = ">="
)

// ParseOperator validates a textual operator.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operator %q", s)
	}
}

// Compare reports whether value satisfies op against target. Tolerance widens
// the comparison toward the target.
func Compare(value, target float64, op Operator, tolerance float64) bool {
	switch op {
	case Equal:
		return math.Abs(value-target) <= tolerance
	case NotEqual:
		return math.Abs(value-target) > tolerance
	case Less:
		return value < target+tolerance
	case LessEqual:
		return value <= target+tolerance
	case Greater:
		return value > target-tolerance
	case GreaterEqual:
		return value >= target-tolerance
	default:
		return false
	}
}

// Options describe one wait.
type Options struct {
	Target    float64
	Op        Operator
	Tolerance float64
	// Timeout is a wall-clock deadline from the start of the wait; zero waits forever.
	Timeout time.Duration
	Poll    time.Duration
}

// Until blocks until sig satisfies the condition. It resamples every poll
// interval and whenever the signal publishes an update. An elapsed timeout
// returns a TimeoutError carrying the last observed value.
func Until(ctx context.Context, sig signal.Signal, opts Options) (float64, error) {
	if _, err := ParseOperator(string(opts.Op)); err != nil {
		return 0, err
	}

	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}

	wake := make(chan struct{}, 1)
	token := sig.Subscribe(func(any) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer sig.Unsubscribe(token)

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var last any
	for {
		raw, err := sig.Get()
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", sig.Name(), err)
		}
		last = raw

		value, err := signal.Float(raw)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", sig.Name(), err)
		}
		if Compare(value, opts.Target, opts.Op, opts.Tolerance) {
			return value, nil
		}

		select {
		case <-ctx.Done():
			return value, ctx.Err()
		case <-deadline:
			return value, megaerrors.NewTimeoutError(sig.Name(), opts.Timeout, last)
		case <-wake:
		case <-ticker.C:
		}
	}
}
