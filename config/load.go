package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileNames lists the configuration file names searched for, in order of
// preference within one directory.
var FileNames = []string{".wat.yaml", ".wat.yml", "wat.yaml", ".wat.toml", "wat.toml"}

// Discover searches dir and its parents for a configuration file. It
// returns "" when none exists.
func Discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load builds the configuration: defaults, then the file at path (or the
// discovered one when path is empty), then environment overrides. The
// result is validated.
func Load(path, workingDir string) (*Config, error) {
	cfg := Default()

	if path == "" {
		found, err := Discover(workingDir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile merges the file at path into c. The format follows the file
// extension.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = c.decodeYAML(data)
	case ".toml":
		err = c.decodeTOML(data)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) decodeTOML(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse toml: %w", err)
	}
	return nil
}

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel      = "WAT_LOG_LEVEL"
	EnvColor         = "WAT_COLOR"
	EnvImplicitClose = "WAT_IMPLICIT_CLOSE"
	EnvJobs          = "WAT_JOBS"
)

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvColor); ok && v != "" {
		c.Color = v
	}
	if v, ok := lookup(EnvImplicitClose); ok && v != "" {
		c.Parser.ImplicitClose = v
	}
	if v, ok := lookup(EnvJobs); ok && v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidValue, EnvJobs, v)
		}
		c.Check.Jobs = jobs
	}
	return nil
}
