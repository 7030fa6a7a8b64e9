package sessioncmd

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

func exit(_ context.Context, _ command.Invocation, env *command.Env) error {
	env.Log.Info("Exiting the interpreter.")
	return megaerrors.ErrExitSession
}

func stop(_ context.Context, _ command.Invocation, env *command.Env) error {
	env.Log.Info("Stopping the current script.")
	return megaerrors.ErrStopScript
}

func timer(ctx context.Context, inv command.Invocation, env *command.Env) error {
	d, err := script.ParseSeconds(inv.Args[0])
	if err != nil {
		return megaerrors.NewArgumentError("t", "invalid duration "+strconv.Quote(inv.Args[0]), err)
	}
	env.Log.Infof("Executing timer for %s", d)
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func printText(_ context.Context, inv command.Invocation, env *command.Env) error {
	env.Log.Info(strings.Join(inv.Args, " "))
	return nil
}

func setVar(_ context.Context, inv command.Invocation, env *command.Env) error {
	value := strings.Join(inv.Args[1:], " ")
	env.Session.SetVar(inv.Args[0], value)
	env.Log.Infof("Setting variable %s to %s", inv.Args[0], value)
	return nil
}

func run(ctx context.Context, inv command.Invocation, env *command.Env) error {
	path := script.Resolve(env.Session.ScriptDir(), inv.Args[0])
	env.Log.Infof("Running script: %s (%s)", inv.Args[0], path)
	return env.Session.RunScript(ctx, path)
}

// repeat runs one command count times, each repetition a separate engine step.
func repeat(ctx context.Context, inv command.Invocation, env *command.Env) error {
	count, err := strconv.Atoi(inv.Args[0])
	if err != nil || count < 0 {
		return megaerrors.NewArgumentError("l", "invalid repeat count "+strconv.Quote(inv.Args[0]), err)
	}
	if env.Exec == nil {
		return megaerrors.NewConfigurationError("l", "no step executor installed")
	}

	body := command.Invocation{Name: strings.ToLower(inv.Args[1]), Args: inv.Args[2:]}
	for i := 0; i < count; i++ {
		env.Log.Debug("Executing repeat " + strconv.Itoa(i+1) + " of " + strconv.Itoa(count))
		if err := env.Exec(ctx, body); err != nil {
			return err
		}
	}
	return nil
}
