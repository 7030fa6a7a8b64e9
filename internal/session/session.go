// Package session holds the state shared by every component of one running
// script session: device handles, motor state, the logged-signal set and the
// fail-diversion trigger.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// MotorMode selects how motion targets are interpreted.
type MotorMode int

const (
	// Absolute targets are positions.
	Absolute MotorMode = iota
	// Relative targets are offsets from the current readback.
	Relative
)

func (m MotorMode) String() string {
	if m == Relative {
		return "relative"
	}
	return "absolute"
}

// MotorState is the pending motion request.
type MotorState struct {
	Mode     MotorMode
	Position float64
	Speed    int
}

// Logged is one entry of the logged-signal set.
type Logged struct {
	Name   string
	Signal signal.Signal
}

// RunFunc executes the script at path as part of the current session.
type RunFunc func(ctx context.Context, path string) error

// Options configure a new Session.
type Options struct {
	ID        string
	ScriptDir string
	LogFile   string
	Devices   map[string]string
	Signals   *signal.Registry
	Speed     int
	Logger    *logger.Logger
}

// Session is the single SharedContext of a running session. It is created once
// and mutated only through its methods.
type Session struct {
	id        string
	scriptDir string
	log       *logger.Logger

	devices map[string]signal.Signal
	paths   map[string]string

	mu            sync.Mutex
	motor         MotorState
	logged        []Logged
	logFile       string
	logRate       float64
	failTriggered bool
	failScript    string
	vars          map[string]string
	run           RunFunc
}

// New resolves every mapped device against the signal registry and returns the
// session. A device whose path has no live signal is a configuration error.
func New(opts Options) (*Session, error) {
	if opts.Signals == nil {
		return nil, megaerrors.NewConfigurationError("", "signal registry is nil")
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &Session{
		id:        id,
		scriptDir: opts.ScriptDir,
		log:       log.With("session", id),
		devices:   make(map[string]signal.Signal, len(opts.Devices)),
		paths:     make(map[string]string, len(opts.Devices)),
		motor:     MotorState{Mode: Absolute, Speed: opts.Speed},
		logFile:   opts.LogFile,
		vars:      make(map[string]string),
	}

	for name, path := range opts.Devices {
		sig, ok := opts.Signals.Lookup(path)
		if !ok {
			return nil, megaerrors.NewConfigurationError(name, fmt.Sprintf("device %s is missing from the signal registry", path))
		}
		s.devices[name] = sig
		s.paths[name] = path
	}

	return s, nil
}

// ID returns the session correlation id.
func (s *Session) ID() string {
	return s.id
}

// ScriptDir is the root that script names are resolved against.
func (s *Session) ScriptDir() string {
	return s.scriptDir
}

// Logger returns the session output channel.
func (s *Session) Logger() *logger.Logger {
	return s.log
}

// Device returns the signal mapped to a display name.
func (s *Session) Device(name string) (signal.Signal, error) {
	sig, ok := s.devices[name]
	if !ok {
		return nil, megaerrors.NewConfigurationError(name, "not found in device mapping")
	}
	return sig, nil
}

// DevicePath returns the underlying device path of a display name.
func (s *Session) DevicePath(name string) (string, bool) {
	p, ok := s.paths[name]
	return p, ok
}

// DeviceNames lists mapped display names in sorted order.
func (s *Session) DeviceNames() []string {
	names := make([]string, 0, len(s.devices))
	for name := range s.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Motor returns a copy of the motor state.
func (s *Session) Motor() MotorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.motor
}

// UpdateMotor mutates the motor state under the session lock.
func (s *Session) UpdateMotor(fn func(m *MotorState)) MotorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.motor)
	return s.motor
}

// SetVar records a literal script variable.
func (s *Session) SetVar(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Var returns a script variable.
func (s *Session) Var(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

// SetRunner installs the callback used by "run" and by diversion.
func (s *Session) SetRunner(fn RunFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = fn
}

// RunScript invokes the installed runner.
func (s *Session) RunScript(ctx context.Context, path string) error {
	s.mu.Lock()
	run := s.run
	s.mu.Unlock()

	if run == nil {
		return megaerrors.NewConfigurationError("run", "no script runner installed")
	}
	return run(ctx, path)
}
