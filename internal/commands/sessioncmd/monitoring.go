package sessioncmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/notify"
	"github.com/alexisbeaulieu97/megatron/internal/plot"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

func failIf(_ context.Context, inv command.Invocation, env *command.Env) error {
	if len(inv.Args) != 3 {
		return megaerrors.NewArgumentError("failif", "requires 3 arguments: signal, target, script", nil)
	}
	name, targetText, recovery := inv.Args[0], inv.Args[1], inv.Args[2]

	target, err := strconv.ParseFloat(targetText, 64)
	if err != nil {
		return megaerrors.NewArgumentError("failif", "invalid target value "+strconv.Quote(targetText), err)
	}

	replaced, err := env.Monitor.Arm(name, target, recovery)
	if err != nil {
		return err
	}
	if replaced {
		env.Log.Infof("Replaced previous failif condition for %s", name)
	}
	env.Log.Infof("Failif condition set: %s triggers fail if it crosses %v. Fail script: %s", name, target, recovery)
	return nil
}

func failIfOff(_ context.Context, inv command.Invocation, env *command.Env) error {
	name := inv.Args[0]
	if !env.Monitor.Disarm(name) {
		env.Log.Warnf("No active failif condition found for %s", name)
		return nil
	}
	env.Log.Infof("Failif condition disabled for %s", name)
	return nil
}

func logSignal(_ context.Context, inv command.Invocation, env *command.Env) error {
	name := inv.Args[0]
	added, err := env.Session.AddLogged(name)
	if err != nil {
		return err
	}
	if !added {
		env.Log.Infof("%s is already logged", name)
		return nil
	}
	if env.DataLog != nil && env.DataLog.Running() {
		env.Log.Warnf("%s joins the log columns on the next lograte", name)
	}
	env.Log.Infof("Logging for %s has been set up.", name)
	return nil
}

func logRate(_ context.Context, inv command.Invocation, env *command.Env) error {
	interval, err := script.ParseSeconds(inv.Args[0])
	if err != nil || interval <= 0 {
		return megaerrors.NewArgumentError("lograte", "invalid log rate "+strconv.Quote(inv.Args[0])+", must be a positive number", err)
	}
	if env.DataLog == nil {
		return megaerrors.NewConfigurationError("lograte", "no data logger configured")
	}

	env.Log.Infof("Setting log rate to %s", interval)
	if err := env.DataLog.SetRate(interval); err != nil {
		return err
	}
	env.Log.Infof("Periodic logging to %s started", env.Session.LogFile())
	return nil
}

func plotSignals(_ context.Context, inv command.Invocation, env *command.Env) error {
	if len(inv.Args) == 1 && strings.EqualFold(inv.Args[0], "dump") {
		env.Log.Info("Dumping current logged signals:")
		for _, l := range env.Session.LoggedSignals() {
			value, err := l.Signal.Get()
			if err != nil {
				env.Log.Warnf("%s: %v", l.Name, err)
				continue
			}
			env.Log.Infof("%s: %s", l.Name, signal.Format(value))
		}
		return nil
	}

	if env.Plots == nil {
		return megaerrors.NewConfigurationError("plot", "no plot directory configured")
	}

	req, err := plot.ParseRequest(inv.Args)
	if err != nil {
		return megaerrors.NewArgumentError("plot", "invalid plot request", err)
	}
	out, err := env.Plots.Render(env.Session.LogFile(), req)
	if err != nil {
		return err
	}
	env.Log.Infof("Plot saved to %s", out)
	return nil
}

func email(ctx context.Context, inv command.Invocation, env *command.Env) error {
	if env.Mailer == nil {
		return notify.ErrNotConfigured
	}

	msg := notify.Message{Subject: inv.Args[0], Body: inv.Args[1], To: inv.Args[2:]}
	if err := env.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	env.Log.Infof("Email sent successfully to %s", strings.Join(msg.To, ", "))
	return nil
}
