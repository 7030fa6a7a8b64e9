// Package command holds the static table that maps script command names to
// handlers, and the environment every handler receives.
package command

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/datalog"
	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/monitor"
	"github.com/alexisbeaulieu97/megatron/internal/notify"
	"github.com/alexisbeaulieu97/megatron/internal/plot"
	"github.com/alexisbeaulieu97/megatron/internal/session"
)

// Family groups commands by the module that implements them.
type Family string

const (
	FamilySession Family = "session"
	FamilyMotion  Family = "motion"
)

// Invocation is one parsed command line.
type Invocation struct {
	Name string
	Args []string
}

// ExecFunc runs a single invocation as one engine step, including the
// fail-trigger check that follows it.
type ExecFunc func(ctx context.Context, inv Invocation) error

// MotionDevices names the display names used by the motion family.
type MotionDevices struct {
	Setpoint   string
	Readback   string
	Controller string
}

// Env is passed to every handler. Handlers ignore what they do not need.
type Env struct {
	Session  *session.Session
	Script   string
	Log      *logger.Logger
	Monitor  *monitor.Monitor
	DataLog  *datalog.Logger
	Mailer   notify.Mailer
	Plots    *plot.Renderer
	Motion   MotionDevices
	WaitPoll time.Duration
	Exec     ExecFunc
}

// WithScript returns a copy of env bound to the script at path.
func (e *Env) WithScript(path string) *Env {
	out := *e
	out.Script = path
	return &out
}

// Handler executes one command.
type Handler interface {
	Execute(ctx context.Context, inv Invocation, env *Env) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv Invocation, env *Env) error

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, inv Invocation, env *Env) error {
	return f(ctx, inv, env)
}

// Entry is one row of the command table.
type Entry struct {
	Name    string
	Family  Family
	MinArgs int
	Usage   string
	Handler Handler
}
