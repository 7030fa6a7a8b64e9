// Package datalog samples the session's logged signals into a CSV file on a
// background goroutine.
package datalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexisbeaulieu97/megatron/internal/logger"
	"github.com/alexisbeaulieu97/megatron/internal/session"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
)

// TimestampLayout is the row timestamp format, microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Stats counts sampling tasks over the logger's lifetime.
type Stats struct {
	Started int
	Stopped int
	Rows    int
}

type task struct {
	interval time.Duration
	columns  []session.Logged
	stop     chan struct{}
	done     chan struct{}
}

// Logger owns at most one sampling task at a time.
type Logger struct {
	sess *session.Session
	log  *logger.Logger
	now  func() time.Time

	rows atomic.Int64

	mu    sync.Mutex
	task  *task
	stats Stats
}

// New returns an idle data logger for sess.
func New(sess *session.Session) *Logger {
	return &Logger{
		sess: sess,
		log:  sess.Logger().With("component", "datalog"),
		now:  time.Now,
	}
}

// SetRate replaces the running sampling task with one ticking every interval.
// The previous task is signalled and has exited before the new one starts, so
// two tasks never write to the same file concurrently.
func (l *Logger) SetRate(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("log rate must be positive, got %s", interval)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.task != nil {
		l.log.Info("stopping existing logging")
		l.stopLocked()
	}

	t := &task{
		interval: interval,
		columns:  l.sess.LoggedSignals(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	l.task = t
	l.stats.Started++
	l.sess.SetLogRate(interval.Seconds())

	go l.run(t)
	return nil
}

// Stop halts the running task, if any, and waits for it to exit.
func (l *Logger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Running reports whether a sampling task is active.
func (l *Logger) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.task != nil
}

// Stats returns task counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := l.stats
	stats.Rows = int(l.rows.Load())
	return stats
}

func (l *Logger) stopLocked() {
	if l.task == nil {
		return
	}
	close(l.task.stop)
	<-l.task.done
	l.task = nil
	l.stats.Stopped++
	l.sess.SetLogRate(0)
}

func (l *Logger) run(t *task) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		default:
		}

		if err := l.Sample(t.columns); err != nil {
			l.log.Error(err, "failed to write log row")
		} else {
			l.rows.Add(1)
		}

		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}
	}
}

// Sample appends one row for columns to the session's log file, creating the
// file and its header first when it does not exist.
func (l *Logger) Sample(columns []session.Logged) error {
	path := l.sess.LogFile()
	if path == "" {
		return errors.New("no log file configured")
	}

	newFile := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		newFile = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if newFile {
		if _, err := w.WriteString(Header(columns) + "\n"); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(l.row(columns) + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

// Header renders the CSV header row for columns.
func Header(columns []session.Logged) string {
	var b strings.Builder
	b.WriteString("Timestamp")
	for _, c := range columns {
		b.WriteString(`,"`)
		b.WriteString(c.Name)
		b.WriteString(`"`)
	}
	return b.String()
}

func (l *Logger) row(columns []session.Logged) string {
	var b strings.Builder
	b.WriteString(l.now().Format(TimestampLayout))
	for _, c := range columns {
		b.WriteByte(',')
		value, err := c.Signal.Get()
		if err != nil {
			l.log.Warnf("cannot read %s: %v", c.Name, err)
			continue
		}
		b.WriteString(signal.Format(value))
	}
	return b.String()
}
