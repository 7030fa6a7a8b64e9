// Package monitor arms fail conditions on live signals. A condition fires when
// its signal crosses a target value and diverts the session to a recovery script.
package monitor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/script"
	"github.com/alexisbeaulieu97/megatron/internal/session"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Condition describes one armed fail condition.
type Condition struct {
	Name     string
	Target   float64
	Recovery string
}

type condition struct {
	Condition
	sig   signal.Signal
	token signal.Token

	mu       sync.Mutex
	last     float64
	disarmed bool
}

// Monitor owns the registry of active fail conditions for a session.
type Monitor struct {
	sess *session.Session
	log  *logger.Logger

	mu     sync.Mutex
	active map[string]*condition
}

// New returns a Monitor raising triggers on sess.
func New(sess *session.Session) *Monitor {
	return &Monitor{
		sess:   sess,
		log:    sess.Logger().With("component", "monitor"),
		active: make(map[string]*condition),
	}
}

// Arm subscribes a crossing check on the named signal. Arming a name that is
// already armed unsubscribes the previous condition first and reports
// replaced=true. Arming also drops any trigger still pending.
func (m *Monitor) Arm(name string, target float64, recoveryScript string) (bool, error) {
	sig, err := m.sess.Device(name)
	if err != nil {
		return false, err
	}

	raw, err := sig.Get()
	if err != nil {
		return false, megaerrors.NewConfigurationError(name, fmt.Sprintf("signal has no live value: %v", err))
	}
	baseline, err := signal.Float(raw)
	if err != nil {
		return false, megaerrors.NewConfigurationError(name, fmt.Sprintf("signal value is not numeric: %v", err))
	}

	c := &condition{
		Condition: Condition{
			Name:     name,
			Target:   target,
			Recovery: script.Resolve(m.sess.ScriptDir(), recoveryScript),
		},
		sig:  sig,
		last: baseline,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous, replaced := m.active[name]
	if replaced {
		previous.disarm()
	}
	m.sess.ClearTrigger()
	c.token = sig.Subscribe(m.callback(c))
	m.active[name] = c

	return replaced, nil
}

// callback builds the change handler for c. It never blocks: it only updates
// the last seen value and raises the session trigger.
func (m *Monitor) callback(c *condition) signal.Callback {
	return func(value any) {
		if m.sess.TriggerPending() {
			return
		}

		next, err := signal.Float(value)
		if err != nil {
			m.log.Debug(fmt.Sprintf("ignoring non-numeric update for %s: %v", c.Name, err))
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disarmed {
			return
		}
		previous := c.last
		c.last = next

		if (previous-c.Target)*(next-c.Target) > 0 {
			return
		}

		if m.sess.Trigger(c.Recovery) {
			m.log.Warnf("fail condition triggered: %s crossed %g (%g -> %g), diverting to %s", c.Name, c.Target, previous, next, c.Recovery)
		}
	}
}

// Disarm removes the condition for name. It reports false when none was armed.
func (m *Monitor) Disarm(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.active[name]
	if !ok {
		return false
	}
	c.disarm()
	delete(m.active, name)
	return true
}

// DisarmAll removes every armed condition and returns how many were active.
func (m *Monitor) DisarmAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.active)
	for name, c := range m.active {
		c.disarm()
		delete(m.active, name)
	}
	return n
}

// disarm unsubscribes c. Once it returns the callback can no longer raise a
// trigger, even if a publish already holds a reference to it.
func (c *condition) disarm() {
	c.mu.Lock()
	c.disarmed = true
	c.mu.Unlock()
	c.sig.Unsubscribe(c.token)
}

// Active lists armed conditions sorted by name.
func (m *Monitor) Active() []Condition {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Condition, 0, len(m.active))
	for _, c := range m.active {
		out = append(out, c.Condition)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
