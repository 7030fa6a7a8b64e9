package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/megatron/internal/config"
	"github.com/alexisbeaulieu97/megatron/internal/engine"
	"github.com/alexisbeaulieu97/megatron/internal/signal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Version:   "1.0.0",
		Name:      "pumpdown",
		ScriptDir: filepath.Join(dir, "scripts"),
		Devices: map[string]string{
			"ION Current":       "ION_Pump_PS.I_I",
			"ION Output Enable": "ION_Pump_PS.Enbl_Out_Cmd",
			"Galil VAL":         "galil_val",
			"Galil RBV":         "galil_rbv",
		},
		Signals: []config.SignalSpec{
			{Path: "ION_Pump_PS.I_I", Kind: "analog", Initial: 5},
			{Path: "ION_Pump_PS.Enbl_Out_Cmd", Kind: "digital", Initial: 0},
			{Path: "galil_val", Kind: "analog"},
			{Path: "galil_rbv", Kind: "analog", Initial: 10.0},
		},
		Logging: config.LogSettings{Dir: filepath.Join(dir, "logs")},
	}
	cfg.ApplyDefaults()
	require.NoError(t, os.MkdirAll(cfg.ScriptDir, 0o755))
	return cfg
}

func writeScript(t *testing.T, cfg *config.Config, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ScriptDir, name), []byte(body), 0o644))
}

func sim(t *testing.T, r *Runtime, path string) *signal.Sim {
	t.Helper()
	s, ok := r.Signals.Lookup(path)
	require.True(t, ok)
	return s.(*signal.Sim)
}

func TestNewSignalsInitialValues(t *testing.T) {
	t.Parallel()

	reg, err := NewSignals(testConfig(t))
	require.NoError(t, err)

	s, ok := reg.Lookup("ION_Pump_PS.I_I")
	require.True(t, ok)
	v, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, 5.0, v)

	s, _ = reg.Lookup("galil_val")
	v, _ = s.Get()
	require.Equal(t, 0.0, v)
}

func TestRunExecutesScriptTree(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeScript(t, cfg, "main.txt", `log "ION Current"
run motion.txt
setdo "ION Output Enable" 1
`)
	writeScript(t, cfg, "motion.txt", `pr 5
bg
`)

	r, err := Build(Options{Config: cfg})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), "main.txt")
	require.NoError(t, err)
	require.Equal(t, engine.StateFinished, summary.State)
	require.Zero(t, summary.Reports)

	require.Equal(t, []any{15.0}, sim(t, r, "galil_val").Writes())
	require.Equal(t, []any{1}, sim(t, r, "ION_Pump_PS.Enbl_Out_Cmd").Writes())
	require.Len(t, r.Session.LoggedSignals(), 1)
}

func TestRunRegistersLoggedSignalsBeforeLogging(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Logging.Rate = 0.01
	writeScript(t, cfg, "main.txt", `lograte 0.01
t0.05
run extra.txt
`)
	writeScript(t, cfg, "extra.txt", `log "ION Output Enable"
log "ION Current"
`)

	r, err := Build(Options{Config: cfg})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "main.txt")
	require.NoError(t, err)
	require.False(t, r.DataLog.Running())

	data, err := os.ReadFile(r.Session.LogFile())
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	require.Equal(t, `Timestamp,"ION Current","ION Output Enable"`, header)
}

func TestShutdownArchivesLog(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Logging.Compress = true
	writeScript(t, cfg, "main.txt", `log "ION Current"
failif "ION Current" 0 recover.txt
lograte 0.01
t0.03
`)

	r, err := Build(Options{Config: cfg})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "main.txt")
	require.NoError(t, err)

	require.NoFileExists(t, r.Session.LogFile())
	require.FileExists(t, r.Session.LogFile()+".gz")
	require.Empty(t, r.Monitor.Active())
}

func TestRunMissingScript(t *testing.T) {
	t.Parallel()

	r, err := Build(Options{Config: testConfig(t)})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "absent.txt")
	require.Error(t, err)
}

func TestBuildRejectsUnknownDevicePath(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Devices["Turbo"] = "turbo.speed"
	_, err := Build(Options{Config: cfg})
	require.Error(t, err)
}

func TestSyncScriptsWithoutRepository(t *testing.T) {
	t.Parallel()

	require.NoError(t, SyncScripts(context.Background(), testConfig(t), nil))
}
