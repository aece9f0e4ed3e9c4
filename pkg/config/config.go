// Package config loads kinship settings and highlight definition files.
//
// Settings come from a TOML or YAML file (chosen by extension), then from an
// optional .env file, then from KINSHIP_* environment variables, each layer
// overriding the previous one. Highlight files describe definitions
// declaratively, including tree-wide filters, and compile into a
// [highlight.Registry].
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/highlight"
)

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KINSHIP_"

// Config holds kinship configuration.
type Config struct {
	Engine EngineConfig `toml:"engine" yaml:"engine"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// EngineConfig tunes the highlight pass.
type EngineConfig struct {
	Thresholds highlight.Thresholds `toml:"thresholds" yaml:"thresholds"`
	// Style is applied to highlights that leave style fields unset.
	Style highlight.Style `toml:"style" yaml:"style" validate:"-"`
	// Capacity lowers the highlight ceiling. Zero keeps the maximum.
	Capacity int `toml:"capacity" yaml:"capacity" validate:"gte=0,lte=200"`
}

// CacheConfig selects where pass results are memoized.
type CacheConfig struct {
	Kind    string        `toml:"kind" yaml:"kind" validate:"oneof=none memory file"`
	Dir     string        `toml:"dir" yaml:"dir" validate:"required_if=Kind file"`
	Entries int           `toml:"entries" yaml:"entries" validate:"gte=0"`
	TTL     time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{Thresholds: highlight.DefaultThresholds},
		Cache: CacheConfig{
			Kind:    CacheMemory,
			Dir:     CacheDir(),
			Entries: 256,
			TTL:     10 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Dir returns the kinship config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kinship")
}

// CacheDir returns the default persistent cache directory.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "kinship")
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. An empty path uses DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "read config")
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals TOML or YAML depending on the file extension.
func decode(path string, data []byte, v any) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(v)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml", "":
		var md toml.MetaData
		md, err = toml.Decode(string(data), v)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = errors.New("unknown key " + undecoded[0].String())
			}
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

// ApplyEnv overrides settings from KINSHIP_* variables read through lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("CACHE_KIND", &c.Cache.Kind)
	str("CACHE_DIR", &c.Cache.Dir)
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", EnvPrefix)
		}
		c.Cache.TTL = d
	}
	for name, dst := range map[string]*int{
		"CACHE_ENTRIES":     &c.Cache.Entries,
		"REDUCED_THRESHOLD": &c.Engine.Thresholds.Reduced,
		"MINIMAL_THRESHOLD": &c.Engine.Thresholds.Minimal,
		"CAPACITY":          &c.Engine.Capacity,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if err := c.Engine.Thresholds.Validate(); err != nil {
		return err
	}
	return c.Engine.Style.Validate()
}
