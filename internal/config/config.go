package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the patrol configuration.
type Config struct {
	Template     string        `yaml:"template"`
	Format       string        `yaml:"format"`
	FailOn       string        `yaml:"failOn"`
	MinSeverity  string        `yaml:"minSeverity"`
	MaxIssues    int           `yaml:"maxIssues"`
	Concurrency  int           `yaml:"concurrency"`
	Include      []string      `yaml:"include"`
	Exclude      []string      `yaml:"exclude"`
	MaxFileBytes int           `yaml:"maxFileBytes"`
	RulesFile    string        `yaml:"rulesFile,omitempty"`
	TemplatesDir string        `yaml:"templatesDir,omitempty"`
	Log          LogConfig     `yaml:"log"`
	Cache        CacheConfig   `yaml:"cache"`
	Privacy      PrivacyConfig `yaml:"privacy"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// PrivacyConfig controls redaction of secrets in report snippets.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Template:     "general",
		Format:       "markdown",
		FailOn:       "none",
		MinSeverity:  "low",
		MaxIssues:    0,
		Concurrency:  4,
		Include:      []string{"**/*"},
		Exclude:      []string{".git/**", "vendor/**", "node_modules/**", "**/*.min.js"},
		MaxFileBytes: 1 << 20,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for patrol.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "patrol"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "patrol"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "patrol"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "patrol"), nil
	default:
		return filepath.Join(home, ".config", "patrol"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile returns the defaults overlaid with the config file. Keys missing
// from the file keep their default. A missing file is not an error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only explicitly set flags should be present).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys understood by SetField.
var envKeys = []struct {
	env string
	key string
}{
	{"PATROL_TEMPLATE", "template"},
	{"PATROL_FORMAT", "format"},
	{"PATROL_FAIL_ON", "failOn"},
	{"PATROL_MIN_SEVERITY", "minSeverity"},
	{"PATROL_MAX_ISSUES", "maxIssues"},
	{"PATROL_CONCURRENCY", "concurrency"},
	{"PATROL_MAX_FILE_BYTES", "maxFileBytes"},
	{"PATROL_RULES_FILE", "rulesFile"},
	{"PATROL_TEMPLATES_DIR", "templatesDir"},
	{"PATROL_LOG_LEVEL", "log.level"},
	{"PATROL_LOG_FORMAT", "log.format"},
	{"PATROL_CACHE", "cache.enabled"},
	{"PATROL_CACHE_DIR", "cache.dir"},
	{"PATROL_REDACT_SECRETS", "privacy.redactSecrets"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("flag %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
func Keys() []string {
	return []string{
		"template", "format", "failOn", "minSeverity", "maxIssues", "concurrency",
		"maxFileBytes", "include", "exclude", "rulesFile", "templatesDir",
		"log.level", "log.format",
		"cache.enabled", "cache.dir", "cache.ttlSeconds",
		"privacy.redactSecrets", "privacy.redactPaths",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List keys take a comma-separated value.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "template":
		cfg.Template = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = strings.ToLower(value)
	case "minSeverity":
		cfg.MinSeverity = strings.ToLower(value)
	case "maxIssues":
		return setInt(&cfg.MaxIssues, key, value)
	case "concurrency":
		return setInt(&cfg.Concurrency, key, value)
	case "maxFileBytes":
		return setInt(&cfg.MaxFileBytes, key, value)
	case "include":
		cfg.Include = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "rulesFile":
		cfg.RulesFile = value
	case "templatesDir":
		cfg.TemplatesDir = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.format":
		cfg.Log.Format = strings.ToLower(value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactSecrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetField returns the value of a single config field in the form SetField
// accepts, so list keys come back comma-separated.
func GetField(cfg Config, key string) (string, error) {
	switch key {
	case "template":
		return cfg.Template, nil
	case "format":
		return cfg.Format, nil
	case "failOn":
		return cfg.FailOn, nil
	case "minSeverity":
		return cfg.MinSeverity, nil
	case "maxIssues":
		return strconv.Itoa(cfg.MaxIssues), nil
	case "concurrency":
		return strconv.Itoa(cfg.Concurrency), nil
	case "maxFileBytes":
		return strconv.Itoa(cfg.MaxFileBytes), nil
	case "include":
		return strings.Join(cfg.Include, ","), nil
	case "exclude":
		return strings.Join(cfg.Exclude, ","), nil
	case "rulesFile":
		return cfg.RulesFile, nil
	case "templatesDir":
		return cfg.TemplatesDir, nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.format":
		return cfg.Log.Format, nil
	case "cache.enabled":
		return strconv.FormatBool(cfg.Cache.Enabled), nil
	case "cache.dir":
		return cfg.Cache.Dir, nil
	case "cache.ttlSeconds":
		return strconv.Itoa(cfg.Cache.TTLSeconds), nil
	case "privacy.redactSecrets":
		return strconv.FormatBool(cfg.Privacy.RedactSecrets), nil
	case "privacy.redactPaths":
		return strings.Join(cfg.Privacy.RedactPaths, ","), nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	validFormats    = []string{"markdown", "md", "text", "json", "yaml", "yml", "sarif"}
	validSeverities = []string{"low", "medium", "high"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !oneOf(strings.ToLower(c.Format), validFormats) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(validFormats, ", "))
	}
	if c.FailOn != "none" && !oneOf(c.FailOn, validSeverities) {
		return fmt.Errorf("invalid failOn %q (want none, low, medium or high)", c.FailOn)
	}
	if !oneOf(c.MinSeverity, validSeverities) {
		return fmt.Errorf("invalid minSeverity %q (want low, medium or high)", c.MinSeverity)
	}
	if c.MaxIssues < 0 {
		return fmt.Errorf("maxIssues must be >= 0, got %d", c.MaxIssues)
	}
	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1 and 64, got %d", c.Concurrency)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("maxFileBytes must be > 0, got %d", c.MaxFileBytes)
	}
	if !oneOf(c.Log.Level, validLogLevels) {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if !oneOf(c.Log.Format, validLogFormats) {
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttlSeconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
