// Package config loads the optional .gate.yaml file of a tracked root.
//
// The file is YAML, validated against an embedded CUE schema before it is
// decoded, so unknown keys and out-of-range values are rejected with the
// schema's error instead of being silently ignored.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gate/internal/ignore"
)

//go:embed schema.cue
var schemaSrc string

// ErrInvalidConfig is returned when .gate.yaml fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultRunInterval = time.Second
)

// Config is the decoded .gate.yaml.
type Config struct {
	Log    LogConfig `yaml:"log"`
	Ignore []string  `yaml:"ignore"`
	Run    RunConfig `yaml:"run"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RunConfig tunes the periodic commit loop.
type RunConfig struct {
	Interval string `yaml:"interval"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Run: RunConfig{Interval: DefaultRunInterval.String()},
	}
}

// RunInterval returns the parsed run interval, or the default when unset.
func (c Config) RunInterval() time.Duration {
	if c.Run.Interval == "" {
		return DefaultRunInterval
	}
	d, err := time.ParseDuration(c.Run.Interval)
	if err != nil || d <= 0 {
		return DefaultRunInterval
	}
	return d
}

// Path returns the config file location for a tracked root.
func Path(dir string) string {
	return filepath.Join(dir, ignore.ConfigFile)
}

// Load reads dir/.gate.yaml. A missing file yields Default().
func Load(dir string) (Config, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes YAML config text. Unset fields take their
// default values.
func Parse(name string, data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := validate(name, data); err != nil {
		return Config{}, err
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	if parsed.Log.Level != "" {
		cfg.Log.Level = parsed.Log.Level
	}
	if parsed.Log.Format != "" {
		cfg.Log.Format = parsed.Log.Format
	}
	if parsed.Run.Interval != "" {
		cfg.Run.Interval = parsed.Run.Interval
	}
	cfg.Ignore = parsed.Ignore
	return cfg, nil
}

// validate checks YAML text against the #Config schema.
func validate(name string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	file, err := cueyaml.Extract(name, data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	return nil
}
