package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/mitchellh/mapstructure"
)

// OperatorDef is an op/3 definition given in a configuration file.
type OperatorDef struct {
	Priority  int      `json:"priority" mapstructure:"priority"`
	Specifier string   `json:"specifier" mapstructure:"specifier"`
	Names     []string `json:"names" mapstructure:"names"`
}

type Config struct {
	Flags     types.Flags   `json:"flags" mapstructure:"flags"`
	Operators []OperatorDef `json:"operators" mapstructure:"operators"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Flags: types.DefaultFlags()}
}

func Load(filePath string) (*Config, error) {
	var parse func(io.Reader) (*Config, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parse = ParseJSON
	case ".yaml", ".yml":
		parse = ParseYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	cfg, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return cfg, nil
}

func ParseYAML(r io.Reader) (*Config, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseJSON(bytes.NewReader(jsonBytes))
}

func ParseJSON(r io.Reader) (*Config, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	cfg := Default()
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("mapstructure.NewDecoder: %w", err)
	}
	if err := d.Decode(raw); err != nil {
		return nil, fmt.Errorf("mapstructure.Decode: %w", err)
	}

	if err := cfg.Flags.Validate(); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// OperatorTable layers the configured operators over parent.
func (c *Config) OperatorTable(parent *types.OperatorTable) (*types.OperatorTable, error) {
	ops := parent.Derive()
	for i, def := range c.Operators {
		if err := ops.Define(def.Priority, types.Specifier(def.Specifier), def.Names...); err != nil {
			return nil, fmt.Errorf("operators[%d]: %w", i, err)
		}
	}
	ops.ReadOnly = true
	return ops, nil
}
