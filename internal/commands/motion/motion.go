// Package motion implements the two-letter motor primitives. Targeting and
// motion use the setpoint and readback devices; the remaining primitives are
// forwarded verbatim to the motion controller.
package motion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/session"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Forwarded lists the primitives passed through to the controller.
var Forwarded = []string{
	"ac", "af", "ba", "bi", "bl", "bm", "bt", "bz", "cc", "ce", "cn", "dc",
	"er", "fa", "fe", "fl", "fv", "hm", "hv", "ib", "iht", "il", "kd", "ki",
	"kp", "ld", "mo", "mt", "op", "pv", "sc", "sh", "ta", "xq",
}

// Register adds the motion family to table.
func Register(table *command.Table) error {
	entries := []command.Entry{
		{Name: "pa", MinArgs: 1, Usage: "pa <position>", Handler: command.HandlerFunc(positionAbsolute)},
		{Name: "pr", MinArgs: 1, Usage: "pr <offset>", Handler: command.HandlerFunc(positionRelative)},
		{Name: "sp", MinArgs: 1, Usage: "sp <speed>", Handler: command.HandlerFunc(speed)},
		{Name: "dp", MinArgs: 1, Usage: "dp <position>", Handler: command.HandlerFunc(definePosition)},
		{Name: "bg", Usage: "bg", Handler: command.HandlerFunc(begin)},
		{Name: "st", Usage: "st", Handler: command.HandlerFunc(stopMotion)},
		{Name: "tp", Usage: "tp", Handler: command.HandlerFunc(tellPosition)},
	}
	for _, name := range Forwarded {
		entries = append(entries, command.Entry{Name: name, Usage: name + " [args...]", Handler: command.HandlerFunc(forward)})
	}

	for _, e := range entries {
		e.Family = command.FamilyMotion
		if err := table.Register(e); err != nil {
			return fmt.Errorf("register motion commands: %w", err)
		}
	}
	return nil
}

func parseNumber(cmd, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, megaerrors.NewArgumentError(cmd, "value must be numeric", err)
	}
	return f, nil
}

func positionAbsolute(_ context.Context, inv command.Invocation, env *command.Env) error {
	pos, err := parseNumber("pa", inv.Args[0])
	if err != nil {
		return err
	}
	env.Session.UpdateMotor(func(m *session.MotorState) {
		m.Mode = session.Absolute
		m.Position = pos
	})
	env.Log.Infof("Motor target set to absolute position %v", pos)
	return nil
}

func positionRelative(_ context.Context, inv command.Invocation, env *command.Env) error {
	offset, err := parseNumber("pr", inv.Args[0])
	if err != nil {
		return err
	}
	env.Session.UpdateMotor(func(m *session.MotorState) {
		m.Mode = session.Relative
		m.Position = offset
	})
	env.Log.Infof("Motor target set to relative offset %v", offset)
	return nil
}

func definePosition(_ context.Context, inv command.Invocation, env *command.Env) error {
	pos, err := parseNumber("dp", inv.Args[0])
	if err != nil {
		return err
	}
	env.Session.UpdateMotor(func(m *session.MotorState) { m.Position = pos })
	env.Log.Infof("Motor position defined as %v", pos)
	return nil
}

func speed(_ context.Context, inv command.Invocation, env *command.Env) error {
	v, err := strconv.Atoi(inv.Args[0])
	if err != nil || v <= 0 {
		return megaerrors.NewArgumentError("sp", "speed must be a positive integer", err)
	}
	env.Session.UpdateMotor(func(m *session.MotorState) { m.Speed = v })
	env.Log.Infof("Motor speed set to %d", v)
	return nil
}

func readback(env *command.Env) (float64, error) {
	sig, err := env.Session.Device(env.Motion.Readback)
	if err != nil {
		return 0, err
	}
	raw, err := sig.Get()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", env.Motion.Readback, err)
	}
	return signal.Float(raw)
}

func writeSetpoint(ctx context.Context, env *command.Env, target float64) error {
	sig, err := env.Session.Device(env.Motion.Setpoint)
	if err != nil {
		return err
	}
	if err := sig.Set(ctx, target); err != nil {
		return fmt.Errorf("write %s: %w", env.Motion.Setpoint, err)
	}
	return nil
}

func begin(ctx context.Context, _ command.Invocation, env *command.Env) error {
	m := env.Session.Motor()
	target := m.Position
	if m.Mode == session.Relative {
		current, err := readback(env)
		if err != nil {
			return err
		}
		target = current + m.Position
	}

	env.Log.Infof("Begin motion to %v (%s, speed %d)", target, m.Mode, m.Speed)
	return writeSetpoint(ctx, env, target)
}

func stopMotion(ctx context.Context, _ command.Invocation, env *command.Env) error {
	current, err := readback(env)
	if err != nil {
		return err
	}
	env.Log.Infof("Stopping motion at %v", current)
	return writeSetpoint(ctx, env, current)
}

func tellPosition(_ context.Context, _ command.Invocation, env *command.Env) error {
	current, err := readback(env)
	if err != nil {
		return err
	}
	env.Log.Infof("Motor position: %v", current)
	return nil
}

// forward sends the primitive to the controller as "NAME arg,arg".
func forward(ctx context.Context, inv command.Invocation, env *command.Env) error {
	raw := strings.ToUpper(inv.Name)
	if len(inv.Args) > 0 {
		raw += " " + strings.Join(inv.Args, ",")
	}

	if env.Motion.Controller == "" {
		env.Log.Warnf("No motion controller configured, %s not sent", raw)
		return nil
	}
	sig, err := env.Session.Device(env.Motion.Controller)
	if err != nil {
		env.Log.Warnf("Motion controller %s is not mapped, %s not sent", env.Motion.Controller, raw)
		return nil
	}

	env.Log.Infof("Sending %s to %s", raw, env.Motion.Controller)
	if err := sig.Set(ctx, raw); err != nil {
		return fmt.Errorf("send %s: %w", raw, err)
	}
	return nil
}
