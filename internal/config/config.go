// Package config loads the snapshot and report configuration file.
//
// The file is YAML; JSON is a subset, so the classic
// trello-snapshot-config.json loads as is.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robby/sprintreport/internal/capture"
)

// DefaultPath is the config file read when neither a flag nor
// SPRINTREPORT_CONFIG names one.
const DefaultPath = "trello-snapshot-config.json"

// EnvPath overrides DefaultPath.
const EnvPath = "SPRINTREPORT_CONFIG"

// Snapshot sources.
const (
	SourceTrello = "trello"
	SourceGitHub = "github"
)

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Source string `yaml:"source"`

	// Trello
	APIKey    string   `yaml:"apiKey"`
	UserToken string   `yaml:"userToken"`
	ListIDs   []string `yaml:"listIds"`

	CardFieldsBlackList []string `yaml:"cardFieldsBlackList"`
	CardFieldsWhiteList []string `yaml:"cardFieldsWhiteList"`

	GitHub GitHub `yaml:"github"`
	Report Report `yaml:"report"`
}

// GitHub selects a Projects v2 board. Field is the single select field whose
// options become lists; it defaults to Status.
type GitHub struct {
	Owner   string `yaml:"owner"`
	Project int    `yaml:"project"`
	Field   string `yaml:"field"`
}

// Report holds rendering defaults that flags may override.
type Report struct {
	Format   string `yaml:"format"`
	Template string `yaml:"template"`
}

// Path returns the config path to use: explicit if set, else
// SPRINTREPORT_CONFIG, else DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config document and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	if c.Source == "" {
		c.Source = SourceTrello
	}
}

// Validate checks what the configured source needs. Trello credentials may
// also come from the environment, so only the list IDs are required here.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceTrello:
		if len(c.ListIDs) == 0 {
			return fmt.Errorf("%w: listIds is empty", ErrInvalid)
		}
	case SourceGitHub:
		if c.GitHub.Owner == "" {
			return fmt.Errorf("%w: github.owner is required", ErrInvalid)
		}
		if c.GitHub.Project <= 0 {
			return fmt.Errorf("%w: github.project must be a project number", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalid, c.Source)
	}
	return nil
}

// Filter builds the card field filter. An absent list disables its half of
// the filter.
func (c *Config) Filter() capture.FieldFilter {
	return capture.FieldFilter{
		Deny:  c.CardFieldsBlackList,
		Allow: c.CardFieldsWhiteList,
	}
}
