// Package config loads expenses.yaml and the EXPENSES_* environment overlay.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "expenses.yaml"

// EnvPrefix starts every environment override.
const EnvPrefix = "EXPENSES_"

// Config represents the top-level expenses.yaml configuration.
type Config struct {
	RulesFile       string `yaml:"rules_file" koanf:"EXPENSES_RULES_FILE"`
	OutputFile      string `yaml:"output_file" koanf:"EXPENSES_OUTPUT_FILE"`
	StatementFormat string `yaml:"statement_format" koanf:"EXPENSES_STATEMENT_FORMAT"`
	Interactive     bool   `yaml:"interactive" koanf:"EXPENSES_INTERACTIVE"`
	IncludeCredits  bool   `yaml:"include_credits" koanf:"EXPENSES_INCLUDE_CREDITS"`
	DefaultCard     string `yaml:"default_card" koanf:"EXPENSES_DEFAULT_CARD"`
	HistoryFile     string `yaml:"history_file" koanf:"EXPENSES_HISTORY_FILE"`
	LogLevel        string `yaml:"log_level" koanf:"EXPENSES_LOG_LEVEL"`
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		RulesFile:       "category_rules.json",
		OutputFile:      "expenses_converted.json",
		StatementFormat: "leumi",
		DefaultCard:     "0000",
		LogLevel:        "info",
	}
}

// Load reads an expenses.yaml file from disk. Keys the file omits keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path, then the environment. A missing file is only an error when
// required is set.
func Resolve(path string, required bool) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !required:
		cfg = Default()
	default:
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any EXPENSES_* variables that are set.
func ApplyEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", nil), nil); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RulesFile) == "" {
		return errors.New("config: rules_file is empty")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return errors.New("config: output_file is empty")
	}
	if !model.IsCard(c.DefaultCard) {
		return fmt.Errorf("config: default_card %q is not 4 digits", c.DefaultCard)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return nil
}
