package sessioncmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	"github.com/alexisbeaulieu97/megatron/internal/wait"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

func set(ctx context.Context, inv command.Invocation, env *command.Env) error {
	sig, err := env.Session.Device(inv.Args[0])
	if err != nil {
		return err
	}
	value := parseValue(inv.Args[1])
	env.Log.Infof("Setting device=%q value=%v", inv.Args[0], value)
	if err := sig.Set(ctx, value); err != nil {
		return fmt.Errorf("set %s: %w", inv.Args[0], err)
	}
	return nil
}

func setAnalog(ctx context.Context, inv command.Invocation, env *command.Env) error {
	value, err := strconv.ParseFloat(inv.Args[1], 64)
	if err != nil {
		return megaerrors.NewArgumentError("setao", "value must be numeric", err)
	}
	return writeOutput(ctx, env, "analog", inv.Args[0], value)
}

func setDigital(ctx context.Context, inv command.Invocation, env *command.Env) error {
	value, err := strconv.Atoi(inv.Args[1])
	if err != nil {
		return megaerrors.NewArgumentError("setdo", "value must be an integer", err)
	}
	return writeOutput(ctx, env, "digital", inv.Args[0], value)
}

// writeOutput writes to a mapped output. Unmapped outputs are only reported.
func writeOutput(ctx context.Context, env *command.Env, kind, name string, value any) error {
	env.Log.Infof("Setting %s output %s to %v", kind, name, value)
	sig, err := env.Session.Device(name)
	if err != nil {
		env.Log.Warnf("%s output %s is not mapped to a device, nothing written", kind, name)
		return nil
	}
	if err := sig.Set(ctx, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func waitAnalog(ctx context.Context, inv command.Invocation, env *command.Env) error {
	op, err := wait.ParseOperator(inv.Args[1])
	if err != nil {
		return megaerrors.NewArgumentError("waitai", "invalid operator", err)
	}
	target, err := strconv.ParseFloat(inv.Args[2], 64)
	if err != nil {
		return megaerrors.NewArgumentError("waitai", "target must be numeric", err)
	}

	opts := wait.Options{Target: target, Op: op, Poll: env.WaitPoll}
	if len(inv.Args) > 3 {
		if opts.Tolerance, err = strconv.ParseFloat(inv.Args[3], 64); err != nil {
			return megaerrors.NewArgumentError("waitai", "tolerance must be numeric", err)
		}
	}
	if len(inv.Args) > 4 {
		if opts.Timeout, err = script.ParseSeconds(inv.Args[4]); err != nil {
			return megaerrors.NewArgumentError("waitai", "timeout must be numeric", err)
		}
	}
	return waitFor(ctx, env, inv.Args[0], opts)
}

func waitDigital(ctx context.Context, inv command.Invocation, env *command.Env) error {
	target, err := strconv.Atoi(inv.Args[1])
	if err != nil {
		return megaerrors.NewArgumentError("waitdi", "target must be an integer", err)
	}

	opts := wait.Options{Target: float64(target), Op: wait.Equal, Poll: env.WaitPoll}
	if len(inv.Args) > 2 {
		if opts.Timeout, err = script.ParseSeconds(inv.Args[2]); err != nil {
			return megaerrors.NewArgumentError("waitdi", "timeout must be numeric", err)
		}
	}
	return waitFor(ctx, env, inv.Args[0], opts)
}

func waitFor(ctx context.Context, env *command.Env, name string, opts wait.Options) error {
	sig, err := env.Session.Device(name)
	if err != nil {
		return err
	}

	env.Log.Infof("Waiting for %s %s %v (tolerance %v)", name, opts.Op, opts.Target, opts.Tolerance)
	start := time.Now()
	value, err := wait.Until(ctx, sig, opts)
	if err != nil {
		return err
	}
	env.Log.Infof("Condition met: %s = %v after %s", name, value, time.Since(start).Round(time.Millisecond))
	return nil
}
