// Package config loads nereid settings.
//
// Layering, lowest to highest: built-in defaults, the YAML file, environment
// variables (a .env file in the working directory is loaded first), and
// finally command-line flags, which the caller applies on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bnomei/nereid-sub000/internal/logging"
	"github.com/bnomei/nereid-sub000/internal/model"
)

// Views accepted by the view setting.
var Views = []string{"diagram", "objects", "text"}

type Config struct {
	Diagram  string              `yaml:"diagram"`
	View     string              `yaml:"view"`
	Refresh  time.Duration       `yaml:"refresh"`
	LogLevel string              `yaml:"log_level"`
	LogFile  string              `yaml:"log_file"`
	Render   model.RenderOptions `yaml:"render"`
	Highlight struct {
		Color string `yaml:"color"`
	} `yaml:"highlight"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.View = "diagram"
	c.Refresh = 2 * time.Second
	c.LogLevel = "info"
	c.LogFile = filepath.Join(homeDir(), ".nereid", "nereid.log")
	c.Highlight.Color = "205"
	return c
}

// DefaultPath is ~/.nereid/config.yaml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".nereid", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load builds the configuration. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"NEREID_DIAGRAM":         &c.Diagram,
		"NEREID_VIEW":            &c.View,
		"NEREID_LOG_LEVEL":       &c.LogLevel,
		"NEREID_LOG_FILE":        &c.LogFile,
		"NEREID_HIGHLIGHT_COLOR": &c.Highlight.Color,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("NEREID_REFRESH"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NEREID_REFRESH: %w", err)
		}
		c.Refresh = d
	}
	flags := map[string]*bool{
		"NEREID_RESERVE_NOTES": &c.Render.ReserveNotes,
		"NEREID_PREFIX_LABELS": &c.Render.PrefixLabels,
	}
	for key, dst := range flags {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	if v := os.Getenv("NEREID_FLOWCHART_COL_GAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEREID_FLOWCHART_COL_GAP: %w", err)
		}
		c.Render.FlowchartColGap = n
	}
	return nil
}

// Validate rejects settings no component can use.
func (c *Config) Validate() error {
	if !isView(c.View) {
		return fmt.Errorf("unknown view %q (valid: %s)", c.View, strings.Join(Views, ", "))
	}
	if c.Refresh <= 0 {
		return fmt.Errorf("refresh must be positive, got %s", c.Refresh)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Render.FlowchartColGap < 0 {
		return fmt.Errorf("render.flowchart_col_gap must not be negative, got %d", c.Render.FlowchartColGap)
	}
	return nil
}

func isView(v string) bool {
	for _, name := range Views {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
