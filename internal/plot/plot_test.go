package plot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleLog = `Timestamp,"ION Current","Chamber Pressure"
2024-03-01T12:00:00.000000,1.000000,0.000010
2024-03-01T12:00:01.000000,1.500000,0.000012
2024-03-01T12:00:02.000000,2.000000,0.000011
`

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))
	return path
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    Request
		wantErr bool
	}{
		{
			name: "names only",
			args: []string{"ION Current"},
			want: Request{Names: []string{"ION Current"}, Width: 800, Height: 600},
		},
		{
			name: "plus geometry",
			args: []string{"ION Current", "Chamber Pressure", "+0,0,400,300"},
			want: Request{Names: []string{"ION Current", "Chamber Pressure"}, Width: 400, Height: 300},
		},
		{
			name: "bare geometry split by tokenizer",
			args: []string{"ION Current", "0", "0", "1200", "900"},
			want: Request{Names: []string{"ION Current"}, Width: 1200, Height: 900},
		},
		{name: "no names", args: []string{"+0,0,400,300"}, wantErr: true},
		{name: "short geometry", args: []string{"ION Current", "+1,2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReadLog(t *testing.T) {
	t.Parallel()

	series, err := ReadLog(writeLog(t), []string{"Chamber Pressure", "ION Current"})
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "Chamber Pressure", series[0].Name)
	require.Equal(t, []float64{1, 1.5, 2}, series[1].Values)
	require.Len(t, series[1].Times, 3)
}

func TestReadLogMissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ReadLog(writeLog(t), []string{"ION Current", "Turbo Speed"})
	require.ErrorContains(t, err, "Turbo Speed")
}

func TestReadLogMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadLog(filepath.Join(t.TempDir(), "absent.csv"), []string{"ION Current"})
	require.Error(t, err)
}

func TestRenderWritesPNG(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "plots")
	r := NewRenderer(dir)
	r.now = func() time.Time { return time.Date(2024, 3, 1, 12, 5, 0, 0, time.Local) }

	out, err := r.Render(writeLog(t), Request{Names: []string{"ION Current"}, Width: 400, Height: 300})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "plot_20240301_120500.png"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, []byte("\x89PNG"), data[:4])
}
