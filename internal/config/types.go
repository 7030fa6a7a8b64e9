package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultLogFile    = "megatron.csv"
	defaultLogDir     = "logs"
	defaultMotorSpeed = 1000000
	defaultSMTPPort   = 587
	defaultMaxDepth   = 32
	defaultWaitPoll   = 50 * time.Millisecond
)

// Config represents a megatron session configuration document.
type Config struct {
	Version   string            `yaml:"version" validate:"required,semver"`
	Name      string            `yaml:"name" validate:"required,min=1,max=100"`
	ScriptDir string            `yaml:"script_dir" validate:"required"`
	Devices   map[string]string `yaml:"devices" validate:"required,min=1,dive,keys,required,endkeys,device_path"`
	Signals   []SignalSpec      `yaml:"signals" validate:"required,min=1,dive"`
	Motor     MotorSettings     `yaml:"motor,omitempty"`
	Logging   LogSettings       `yaml:"logging,omitempty"`
	Email     EmailSettings     `yaml:"email,omitempty"`
	Scripts   ScriptSource      `yaml:"scripts,omitempty"`
	Engine    EngineSettings    `yaml:"engine,omitempty"`
}

// SignalSpec declares one simulated signal and its starting value.
type SignalSpec struct {
	Path    string `yaml:"path" validate:"required,device_path"`
	Kind    string `yaml:"kind" validate:"required,oneof=analog digital string"`
	Initial any    `yaml:"initial,omitempty"`
}

// MotorSettings configures the motion command family.
type MotorSettings struct {
	DefaultSpeed int    `yaml:"default_speed,omitempty" validate:"omitempty,min=1"`
	Setpoint     string `yaml:"setpoint,omitempty"`
	Readback     string `yaml:"readback,omitempty"`
	Controller   string `yaml:"controller,omitempty"`
}

// LogSettings configures the background data logger.
type LogSettings struct {
	Dir      string  `yaml:"dir,omitempty"`
	File     string  `yaml:"file,omitempty"`
	Rate     float64 `yaml:"rate,omitempty" validate:"omitempty,gt=0"`
	Compress bool    `yaml:"compress,omitempty"`
}

// EmailSettings configures SMTP delivery for the email command.
type EmailSettings struct {
	Host        string `yaml:"host,omitempty" validate:"omitempty,hostname"`
	Port        int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	From        string `yaml:"from,omitempty" validate:"omitempty,email"`
	UsernameEnv string `yaml:"username_env,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// ScriptSource optionally syncs the script directory from a git repository.
type ScriptSource struct {
	URL    string `yaml:"url,omitempty" validate:"omitempty,git_url"`
	Branch string `yaml:"branch,omitempty"`
}

// EngineSettings tunes the execution engine.
type EngineSettings struct {
	MaxDepth int           `yaml:"max_depth,omitempty" validate:"omitempty,min=1,max=1024"`
	WaitPoll time.Duration `yaml:"wait_poll,omitempty"`
}

// UnmarshalYAML applies defaults for omitted settings.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig Config
	var temp rawConfig
	if err := value.Decode(&temp); err != nil {
		return err
	}
	*c = Config(temp)
	c.ApplyDefaults()
	return nil
}

// ApplyDefaults fills zero-valued settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Logging.File == "" {
		c.Logging.File = defaultLogFile
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Motor.DefaultSpeed == 0 {
		c.Motor.DefaultSpeed = defaultMotorSpeed
	}
	if c.Motor.Setpoint == "" {
		c.Motor.Setpoint = "Galil VAL"
	}
	if c.Motor.Readback == "" {
		c.Motor.Readback = "Galil RBV"
	}
	if c.Email.Port == 0 {
		c.Email.Port = defaultSMTPPort
	}
	if c.Engine.MaxDepth == 0 {
		c.Engine.MaxDepth = defaultMaxDepth
	}
	if c.Engine.WaitPoll <= 0 {
		c.Engine.WaitPoll = defaultWaitPoll
	}
}

// SignalPaths returns the declared signal paths as a set.
func (c *Config) SignalPaths() map[string]SignalSpec {
	out := make(map[string]SignalSpec, len(c.Signals))
	for _, s := range c.Signals {
		out[s.Path] = s
	}
	return out
}
