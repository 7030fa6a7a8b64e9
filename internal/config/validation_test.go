package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	megaerrors "github.com/alexisbeaulieu97/megatron/pkg/errors"
)

func baseConfig() *Config {
	cfg := &Config{
		Version:   "1.0",
		Name:      "bench",
		ScriptDir: "scripts",
		Devices:   map[string]string{"Galil RBV": "galil_rbv"},
		Signals:   []SignalSpec{{Path: "galil_rbv", Kind: "analog", Initial: 0.0}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidateConfigAcceptsBase(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateConfig(baseConfig()))
}

func TestValidateConfigRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{
			name:   "bad version",
			mutate: func(cfg *Config) { cfg.Version = "beta" },
			field:  "config.version",
		},
		{
			name: "duplicate signal",
			mutate: func(cfg *Config) {
				cfg.Signals = append(cfg.Signals, SignalSpec{Path: "galil_rbv", Kind: "analog"})
			},
			field: "signals[1].path",
		},
		{
			name:   "unknown kind",
			mutate: func(cfg *Config) { cfg.Signals[0].Kind = "quantum" },
			field:  "config.signals[0].kind",
		},
		{
			name:   "malformed device path",
			mutate: func(cfg *Config) { cfg.Devices["Galil RBV"] = "galil rbv" },
			field:  "config.devices[galil rbv]",
		},
		{
			name:   "analog with text initial",
			mutate: func(cfg *Config) { cfg.Signals[0].Initial = "high" },
			field:  "signals[0].initial",
		},
		{
			name:   "digital with float initial",
			mutate: func(cfg *Config) { cfg.Signals[0].Kind = "digital"; cfg.Signals[0].Initial = 0.5 },
			field:  "signals[0].initial",
		},
		{
			name:   "bad git url",
			mutate: func(cfg *Config) { cfg.Scripts.URL = "not a url" },
			field:  "config.scripts.url",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig()
			tc.mutate(cfg)

			err := ValidateConfig(cfg)
			var validationErr *megaerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestValidateConfigNil(t *testing.T) {
	t.Parallel()
	require.Error(t, ValidateConfig(nil))
}

func TestGitURLRule(t *testing.T) {
	t.Parallel()

	v := GetValidator()
	for _, ok := range []string{"https://github.com/lab/scripts.git", "git@github.com:lab/scripts.git", "/srv/scripts", "file:///srv/scripts"} {
		require.NoError(t, v.Var(ok, "git_url"), ok)
	}
	for _, bad := range []string{"scripts", "https://", "  "} {
		require.Error(t, v.Var(bad, "git_url"), bad)
	}
}
