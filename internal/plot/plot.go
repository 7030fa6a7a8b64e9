// Package plot renders logged signal history to PNG.
package plot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/alexisbeaulieu97/megatron/internal/datalog"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

// ErrNoSignals is returned when a request names no signals.
var ErrNoSignals = errors.New("no signals specified for plotting")

// Request selects the signals to plot and the image size in pixels at 100 dpi.
type Request struct {
	Names  []string
	Width  int
	Height int
}

// ParseRequest splits plot arguments into signal names and an optional
// geometry given as "+x,y,w,h" or bare comma-separated integers. Only the
// width and height of a geometry are used.
func ParseRequest(args []string) (Request, error) {
	req := Request{Width: defaultWidth, Height: defaultHeight}

	var geometry []string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "+"):
			geometry = append(geometry, splitGeometry(arg[1:])...)
		case isGeometry(arg):
			geometry = append(geometry, splitGeometry(arg)...)
		default:
			req.Names = append(req.Names, arg)
		}
	}

	if len(req.Names) == 0 {
		return req, ErrNoSignals
	}

	if len(geometry) > 0 {
		if len(geometry) != 4 {
			return req, fmt.Errorf("invalid geometry %v: want x,y,w,h", geometry)
		}
		dims := make([]int, 4)
		for i, g := range geometry {
			n, err := strconv.Atoi(g)
			if err != nil {
				return req, fmt.Errorf("invalid geometry %v: %w", geometry, err)
			}
			dims[i] = n
		}
		if dims[2] <= 0 || dims[3] <= 0 {
			return req, fmt.Errorf("invalid geometry %v: size must be positive", geometry)
		}
		req.Width, req.Height = dims[2], dims[3]
	}

	return req, nil
}

func isGeometry(arg string) bool {
	if arg == "" {
		return false
	}
	for _, r := range arg {
		if (r < '0' || r > '9') && r != ',' {
			return false
		}
	}
	return true
}

func splitGeometry(arg string) []string {
	var out []string
	for _, part := range strings.Split(arg, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Series is the history of one logged column.
type Series struct {
	Name   string
	Times  []time.Time
	Values []float64
}

// ReadLog loads the requested columns from a data log. Every requested name
// must be a column of the file.
func ReadLog(path string, names []string) ([]Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("log file does not exist, ensure logging is enabled: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read log header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.Trim(strings.TrimSpace(h), `"`)] = i
	}

	var missing []string
	series := make([]Series, len(names))
	columns := make([]int, len(names))
	for i, name := range names {
		col, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		series[i].Name = name
		columns[i] = col
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("signals not in the log file: %s", strings.Join(missing, ", "))
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		ts, err := time.ParseInLocation(datalog.TimestampLayout, record[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", record[0], err)
		}
		for i, col := range columns {
			if col >= len(record) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				continue
			}
			series[i].Times = append(series[i].Times, ts)
			series[i].Values = append(series[i].Values, v)
		}
	}

	return series, nil
}

func localTime(sec float64) time.Time {
	return time.Unix(0, int64(sec*float64(time.Second))).Local()
}

// Renderer writes plots into a directory.
type Renderer struct {
	Dir string
	now func() time.Time
}

// NewRenderer returns a Renderer writing under dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir, now: time.Now}
}

// Render plots the requested columns of the log file and returns the image path.
func (r *Renderer) Render(logFile string, req Request) (string, error) {
	if len(req.Names) == 0 {
		return "", ErrNoSignals
	}

	series, err := ReadLog(logFile, req.Names)
	if err != nil {
		return "", err
	}

	p := plot.New()
	p.Title.Text = "Signal Data Over Time"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05", Time: localTime}
	p.Add(plotter.NewGrid())

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Values))
		for j := range s.Values {
			xys[j].X = float64(s.Times[j].UnixNano()) / float64(time.Second)
			xys[j].Y = s.Values[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return "", fmt.Errorf("plot %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create plot directory: %w", err)
	}

	out := filepath.Join(r.Dir, fmt.Sprintf("plot_%s.png", r.now().Format("20060102_150405")))
	width := vg.Length(req.Width) / 100 * vg.Inch
	height := vg.Length(req.Height) / 100 * vg.Inch
	if err := p.Save(width, height, out); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return out, nil
}
