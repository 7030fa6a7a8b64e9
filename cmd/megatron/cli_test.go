package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sessionYAML = `version: "1.0.0"
name: pumpdown
script_dir: scripts
devices:
  ION Current: ION_Pump_PS.I_I
  ION Output Enable: ION_Pump_PS.Enbl_Out_Cmd
signals:
  - path: ION_Pump_PS.I_I
    kind: analog
    initial: 5.0
  - path: ION_Pump_PS.Enbl_Out_Cmd
    kind: digital
    initial: 0
logging:
  dir: logs
`

func writeSession(t *testing.T, scripts map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "megatron.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sessionYAML), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", name), []byte(body), 0o644))
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestCheckListsLoggedSignals(t *testing.T) {
	cfgPath := writeSession(t, map[string]string{
		"main.txt": "log \"ION Current\"\nrun sub.txt\n",
		"sub.txt":  "log \"Chamber Pressure\"\n",
	})

	out, err := execute(t, "check", "--config", cfgPath, "main.txt")
	require.NoError(t, err)
	require.Contains(t, out, "Scripts (2):")
	require.Contains(t, out, "ION Current -> ION_Pump_PS.I_I")
	require.Contains(t, out, "Chamber Pressure -> unmapped")
}

func TestCheckReportsUnclosedLoop(t *testing.T) {
	cfgPath := writeSession(t, map[string]string{
		"main.txt": "l2\nprint never closed\n",
	})

	out, err := execute(t, "check", "--config", cfgPath, "main.txt")
	require.ErrorContains(t, err, "1 problem(s)")
	require.Contains(t, out, "loop syntax error")
}

func TestRunPlainSession(t *testing.T) {
	cfgPath := writeSession(t, map[string]string{
		"main.txt": "l2\nsetdo \"ION Output Enable\" 1\nn\nfrobnicate\n",
	})

	out, err := execute(t, "run", "--config", cfgPath, "--plain", "--no-sync", "main.txt")
	require.NoError(t, err)
	require.Contains(t, out, "session finished")
	require.Contains(t, out, "1 reports")
}

func TestRunRequiresExistingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--plain", "main.txt")
	require.ErrorContains(t, err, "config file does not exist")
}
