// Package app wires a configured session: signals, session state, monitor,
// data logger, command table and engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/command"
	"github.com/alexisbeaulieu97/megatron/internal/commands"
	"github.com/alexisbeaulieu97/megatron/internal/config"
	"github.com/alexisbeaulieu97/megatron/internal/datalog"
	"github.com/alexisbeaulieu97/megatron/internal/engine"
	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/monitor"
	"github.com/alexisbeaulieu97/megatron/internal/notify"
	"github.com/alexisbeaulieu97/megatron/internal/plot"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	"github.com/alexisbeaulieu97/megatron/internal/scriptsync"
	"github.com/alexisbeaulieu97/megatron/internal/session"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
)

// Options configure Build.
type Options struct {
	Config   *config.Config
	Logger   *logger.Logger
	Observer engine.Observer
	// Mailer overrides the SMTP mailer built from configuration.
	Mailer notify.Mailer
}

// Runtime is one fully wired session.
type Runtime struct {
	cfg *config.Config
	log *logger.Logger

	Signals *signal.Registry
	Session *session.Session
	Monitor *monitor.Monitor
	DataLog *datalog.Logger
	Table   *command.Table
	Engine  *engine.Engine
}

// Build assembles a Runtime from configuration.
func Build(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("configuration is nil")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	signals, err := NewSignals(cfg)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(session.Options{
		ScriptDir: cfg.ScriptDir,
		LogFile:   filepath.Join(cfg.Logging.Dir, cfg.Logging.File),
		Devices:   cfg.Devices,
		Signals:   signals,
		Speed:     cfg.Motor.DefaultSpeed,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	table, err := commands.NewTable()
	if err != nil {
		return nil, err
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = notify.NewSMTPMailer(cfg.Email)
	}

	r := &Runtime{
		cfg:     cfg,
		log:     sess.Logger(),
		Signals: signals,
		Session: sess,
		Monitor: monitor.New(sess),
		DataLog: datalog.New(sess),
		Table:   table,
	}

	r.Engine, err = engine.New(engine.Options{
		Table: table,
		Env: &command.Env{
			Session: sess,
			Log:     r.log,
			Monitor: r.Monitor,
			DataLog: r.DataLog,
			Mailer:  mailer,
			Plots:   plot.NewRenderer(filepath.Join(cfg.Logging.Dir, "plots")),
			Motion: command.MotionDevices{
				Setpoint:   cfg.Motor.Setpoint,
				Readback:   cfg.Motor.Readback,
				Controller: cfg.Motor.Controller,
			},
			WaitPoll: cfg.Engine.WaitPoll,
		},
		MaxDepth: cfg.Engine.MaxDepth,
		Observer: opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// NewSignals creates the simulated signal backend declared by cfg.
func NewSignals(cfg *config.Config) (*signal.Registry, error) {
	reg := signal.NewRegistry()
	for _, spec := range cfg.Signals {
		if err := reg.Add(spec.Path, signal.NewSim(spec.Path, initialValue(spec))); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func initialValue(spec config.SignalSpec) any {
	switch spec.Kind {
	case "analog":
		if f, err := signal.Float(spec.Initial); err == nil {
			return f
		}
		return 0.0
	case "digital":
		if i, ok := spec.Initial.(int); ok {
			return i
		}
		return 0
	default:
		if spec.Initial == nil {
			return ""
		}
		return fmt.Sprint(spec.Initial)
	}
}

// Run executes the named script under the script directory and shuts the
// session down afterwards. Signals named by "log" anywhere in the script tree
// are registered up front so the data log header is complete.
func (r *Runtime) Run(ctx context.Context, name string) (engine.Summary, error) {
	path := script.Resolve(r.cfg.ScriptDir, name)
	defer r.Shutdown()

	report, err := script.Check(r.cfg.ScriptDir, path)
	if err != nil {
		return engine.Summary{}, err
	}
	for _, problem := range report.Problems {
		r.log.Warn(problem.Error())
	}
	for _, logged := range report.LoggedSignals {
		if _, err := r.Session.AddLogged(logged); err != nil {
			r.log.Warnf("cannot log %s: %v", logged, err)
		}
	}

	if r.cfg.Logging.Rate > 0 {
		interval := time.Duration(r.cfg.Logging.Rate * float64(time.Second))
		if err := r.DataLog.SetRate(interval); err != nil {
			return engine.Summary{}, err
		}
	}

	r.log.WithFields(map[string]any{"script": path, "devices": len(r.Session.DeviceNames())}).Info("session started")
	summary, err := r.Engine.Run(ctx, path)
	r.log.WithFields(map[string]any{
		"state":      summary.State.String(),
		"steps":      summary.Steps,
		"diversions": summary.Diversions,
		"reports":    summary.Reports,
	}).Info("session ended")
	return summary, err
}

// Shutdown disarms fail conditions, stops logging and archives the data log
// when compression is enabled.
func (r *Runtime) Shutdown() {
	if n := r.Monitor.DisarmAll(); n > 0 {
		r.log.Infof("disarmed %d fail condition(s)", n)
	}
	r.DataLog.Stop()

	if !r.cfg.Logging.Compress {
		return
	}
	path := r.Session.LogFile()
	if _, err := os.Stat(path); err != nil {
		return
	}
	archived, err := datalog.Archive(path)
	if err != nil {
		r.log.Error(err, "failed to archive data log")
		return
	}
	r.log.Infof("data log archived to %s", archived)
}

// SyncScripts refreshes the script directory from the configured repository.
// It is a no-op when no repository is configured.
func SyncScripts(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Scripts.URL == "" {
		return nil
	}
	res, err := scriptsync.Sync(ctx, scriptsync.Options{
		URL:    cfg.Scripts.URL,
		Branch: cfg.Scripts.Branch,
		Dir:    cfg.ScriptDir,
	})
	if err != nil {
		return err
	}
	log.WithFields(map[string]any{"action": string(res.Action), "head": res.Head}).Info("scripts synced")
	return nil
}
