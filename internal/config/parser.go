package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a session file from disk, validates it, and returns the
// resulting model. Relative script and log directories are resolved against
// the directory holding the session file.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, megaerrors.NewParseError(path, 0, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		var validationErr *megaerrors.ValidationError
		if asValidation(err, &validationErr) {
			return nil, err
		}
		return nil, megaerrors.NewParseError(path, extractLine(err), err)
	}

	base := filepath.Dir(path)
	cfg.ScriptDir = resolveAgainst(base, cfg.ScriptDir)
	cfg.Logging.Dir = resolveAgainst(base, cfg.Logging.Dir)

	return cfg, nil
}

// Parse decodes and validates an in-memory session document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolveAgainst(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
