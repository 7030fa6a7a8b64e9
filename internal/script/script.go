// Package script reads automation scripts and splits them into instructions.
package script

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

// Script is the ordered raw lines of one file.
type Script struct {
	Path  string
	Lines []string
}

// Load reads path from disk. Scripts are never cached so edits apply on the next run.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, megaerrors.NewParseError(path, 0, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, megaerrors.NewParseError(path, len(lines)+1, err)
	}

	return &Script{Path: path, Lines: lines}, nil
}

// Name returns the file name of the script.
func (s *Script) Name() string {
	if s == nil {
		return ""
	}
	return filepath.Base(s.Path)
}

// Resolve joins a script name used by "run" or "failif" onto the script root.
// Absolute names are returned unchanged.
func Resolve(root, name string) string {
	if filepath.IsAbs(name) || root == "" {
		return name
	}
	return filepath.Join(root, name)
}
