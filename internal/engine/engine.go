// Package engine executes scripts line by line: timers, nested loops, command
// dispatch, sub-script calls and fail diversion.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	"github.com/alexisbeaulieu97/megatron/internal/session"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// DefaultMaxDepth bounds nested "run" calls.
const DefaultMaxDepth = 32

// Options configure an Engine.
type Options struct {
	Table    *command.Table
	Env      *command.Env
	MaxDepth int
	Observer Observer
}

// Engine is the script cursor of one session. All script execution happens on
// the goroutine that calls Run.
type Engine struct {
	table    *command.Table
	env      *command.Env
	sess     *session.Session
	log      *logger.Logger
	maxDepth int
	observer Observer

	state atomic.Int32
	depth int
	loops int

	steps      int
	diversions int
	reports    int
}

type frame struct {
	script *script.Script
	env    *command.Env
	log    *logger.Logger
	depth  int
}

// New builds an engine and installs it as the session's script runner.
func New(opts Options) (*Engine, error) {
	if opts.Table == nil {
		return nil, errors.New("engine requires a command table")
	}
	if opts.Env == nil || opts.Env.Session == nil {
		return nil, errors.New("engine requires a session environment")
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	log := opts.Env.Log
	if log == nil {
		log = opts.Env.Session.Logger()
	}

	e := &Engine{
		table:    opts.Table,
		env:      opts.Env,
		sess:     opts.Env.Session,
		log:      log,
		maxDepth: maxDepth,
		observer: opts.Observer,
	}
	e.sess.SetRunner(e.runScript)
	return e, nil
}

// State returns the current engine state. Safe to call from any goroutine.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Run executes the script at path as the top-level script of the session.
// A fail trigger abandons every frame and restarts execution from the
// recovery script. Run returns when the last script finishes, on exit, or when
// ctx is cancelled.
func (e *Engine) Run(ctx context.Context, path string) (Summary, error) {
	start := time.Now()
	current := path
	e.setState(StateRunning)

	var runErr error
	for {
		err := e.runScript(ctx, current)

		var diversion *megaerrors.DiversionError
		if errors.As(err, &diversion) {
			e.diversions++
			e.setState(StateDiverting)
			e.log.Warnf("Fail condition triggered, running recovery script %s", diversion.Recovery)
			e.emit(Event{Kind: EventDiversion, Script: diversion.Recovery})
			current = diversion.Recovery
			e.setState(StateRunning)
			continue
		}

		switch {
		case err == nil:
			if e.State() != StateStopped {
				e.setState(StateFinished)
			}
		case errors.Is(err, megaerrors.ErrExitSession):
			e.setState(StateExited)
		default:
			e.setState(StateStopped)
			runErr = err
		}
		break
	}

	summary := Summary{
		State:      e.State(),
		Steps:      e.steps,
		Diversions: e.diversions,
		Reports:    e.reports,
		Duration:   time.Since(start),
	}
	e.emit(Event{Kind: EventSessionEnded, Err: runErr})
	return summary, runErr
}

// runScript executes one script file as a frame. Stop requests, unmatched
// loops and wait timeouts end this frame only; diversion, exit and
// cancellation propagate. A trigger raised by the step that ended the frame
// still diverts.
func (e *Engine) runScript(ctx context.Context, path string) error {
	if e.depth >= e.maxDepth {
		return fmt.Errorf("script nesting deeper than %d at %s", e.maxDepth, path)
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}

	e.depth++
	defer func() { e.depth-- }()

	f := &frame{script: s, depth: e.depth}
	f.log = e.log.WithFields(map[string]any{"script": s.Name()})
	f.env = e.env.WithScript(path)
	f.env.Log = f.log
	f.env.Exec = func(ctx context.Context, inv command.Invocation) error {
		if err := e.dispatch(ctx, f, 0, inv); err != nil {
			return err
		}
		return e.checkTrigger()
	}

	e.emit(Event{Kind: EventScriptStarted, Script: path, Depth: f.depth})
	err = e.execRange(ctx, f, 0, len(s.Lines))
	e.emit(Event{Kind: EventScriptFinished, Script: path, Depth: f.depth, Err: err})

	var loopErr *megaerrors.LoopSyntaxError
	var timeoutErr *megaerrors.TimeoutError
	switch {
	case errors.Is(err, megaerrors.ErrStopScript):
		f.log.Info("Script stopped")
		if f.depth == 1 {
			e.setState(StateStopped)
		} else {
			e.resume()
		}
		return e.checkTrigger()
	case errors.As(err, &loopErr):
		e.report(f, loopErr.Line, err)
		return e.checkTrigger()
	case errors.As(err, &timeoutErr):
		e.report(f, 0, fmt.Errorf("script abandoned: %w", err))
		return e.checkTrigger()
	default:
		return err
	}
}

// execRange runs lines [start, end) of the frame's script.
func (e *Engine) execRange(ctx context.Context, f *frame, start, end int) error {
	for i := start; i < end; {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := e.execLine(ctx, f, i, end)
		if err != nil {
			return err
		}
		i = next

		e.steps++
		if err := e.checkTrigger(); err != nil {
			return err
		}
	}
	return nil
}

// execLine executes the line at i and returns the index of the next line.
func (e *Engine) execLine(ctx context.Context, f *frame, i, end int) (int, error) {
	lineNo := i + 1
	inst, err := script.Parse(f.script.Lines[i])
	if err != nil {
		if script.Classify(f.script.Lines[i]) != script.KindLoopOpen {
			e.report(f, lineNo, err)
			return i + 1, nil
		}
		closeAt, ok := script.FindLoopEnd(f.script.Lines[:end], i)
		if !ok {
			return i + 1, megaerrors.NewLoopSyntaxError(f.script.Path, lineNo)
		}
		e.report(f, lineNo, fmt.Errorf("loop skipped: %w", err))
		return closeAt + 1, nil
	}

	if !inst.IsNoop() {
		e.emit(Event{Kind: EventLine, Script: f.script.Path, Line: lineNo, Text: inst.Text, Depth: f.depth})
	}

	switch inst.Kind {
	case script.KindTimer:
		seconds := strconv.FormatFloat(inst.Duration.Seconds(), 'f', -1, 64)
		return i + 1, e.dispatch(ctx, f, lineNo, command.Invocation{Name: "t", Args: []string{seconds}})
	case script.KindLoopOpen:
		closeAt, ok := script.FindLoopEnd(f.script.Lines[:end], i)
		if !ok {
			return i + 1, megaerrors.NewLoopSyntaxError(f.script.Path, lineNo)
		}
		if err := e.loop(ctx, f, inst.Count, i+1, closeAt); err != nil {
			return closeAt + 1, err
		}
		return closeAt + 1, nil
	case script.KindLoopClose:
		e.report(f, lineNo, errors.New("'n' without a matching loop"))
		return i + 1, nil
	case script.KindCommand:
		inv := command.Invocation{Name: inst.Command, Args: inst.Args}
		return i + 1, e.dispatch(ctx, f, lineNo, inv)
	default:
		return i + 1, nil
	}
}

func (e *Engine) loop(ctx context.Context, f *frame, count, start, end int) error {
	e.loops++
	e.setState(StateInLoop)
	defer func() {
		e.loops--
		e.resume()
	}()

	for iter := 1; iter <= count; iter++ {
		f.log.Debug(fmt.Sprintf("Executing loop iteration %d of %d", iter, count))
		e.emit(Event{Kind: EventLoopIteration, Script: f.script.Path, Line: start, Text: fmt.Sprintf("%d/%d", iter, count), Depth: e.loops})
		if err := e.execRange(ctx, f, start, end); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs one invocation. Recoverable failures are reported and
// swallowed; control flow, unmatched loops, timeouts and cancellation return.
func (e *Engine) dispatch(ctx context.Context, f *frame, lineNo int, inv command.Invocation) error {
	env := f.env
	if lineNo > 0 {
		lineEnv := *f.env
		lineEnv.Log = f.log.With("line", lineNo)
		env = &lineEnv
	}

	err := e.table.Dispatch(ctx, inv, env)
	if err == nil {
		return nil
	}

	var loopErr *megaerrors.LoopSyntaxError
	var timeoutErr *megaerrors.TimeoutError
	switch {
	case megaerrors.IsControlFlow(err),
		errors.As(err, &loopErr),
		errors.As(err, &timeoutErr),
		ctx.Err() != nil:
		return err
	}

	e.report(f, lineNo, err)
	return nil
}

// resume restores the running state after a loop or a stopped sub-script.
func (e *Engine) resume() {
	if e.loops > 0 {
		e.setState(StateInLoop)
		return
	}
	e.setState(StateRunning)
}

func (e *Engine) checkTrigger() error {
	recovery, ok := e.sess.ConsumeTrigger()
	if !ok {
		return nil
	}
	return megaerrors.NewDiversionError(recovery)
}

func (e *Engine) report(f *frame, lineNo int, err error) {
	e.reports++
	if lineNo > 0 {
		err = megaerrors.NewExecutionError(filepath.Base(f.script.Path), lineNo, err)
	}
	f.log.Warn(err.Error())
	e.emit(Event{Kind: EventReport, Script: f.script.Path, Line: lineNo, Err: err, Depth: f.depth})
}

func (e *Engine) emit(ev Event) {
	if e.observer == nil {
		return
	}
	ev.State = e.State()
	ev.Time = time.Now()
	e.observer(ev)
}
