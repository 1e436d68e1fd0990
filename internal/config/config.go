// Package config provides configuration file support for remod.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file, looked up in the project
// root being modernized.
const ConfigFileName = ".remod.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the remod configuration file. Pointer fields distinguish
// "absent" from "explicit zero" so precedence resolution works.
type Config struct {
	Slug            *string   `yaml:"slug"`
	Concurrency     *int      `yaml:"concurrency"`
	PollInterval    *Duration `yaml:"poll_interval"`
	Timeout         *Duration `yaml:"timeout"`
	Retries         *int      `yaml:"retries"`
	SourceExt       *string   `yaml:"source_ext"`
	OutputDir       *string   `yaml:"output_dir"`
	CredentialsFile *string   `yaml:"credentials_file"`
	ExcludePatterns []string  `yaml:"exclude_patterns"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromDir reads .remod.yaml from the specified directory.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFromDir(dir string) (*LoadResult, error) {
	return LoadFromPath(filepath.Join(dir, ConfigFileName))
}

// LoadFromPath reads a config file and returns warnings for unknown keys.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFromPath(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Concurrency != nil && *c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", *c.Concurrency)
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", *c.Retries)
	}
	if c.PollInterval != nil && *c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0, got %s", time.Duration(*c.PollInterval))
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	for _, pattern := range c.ExcludePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// knownKeys are the valid top-level keys in the config file.
var knownKeys = []string{
	"slug", "concurrency", "poll_interval", "timeout", "retries",
	"source_ext", "output_dir", "credentials_file", "exclude_patterns",
}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error.
		return nil
	}

	var warnings []string
	for key := range raw {
		if !slices.Contains(knownKeys, key) {
			warnings = append(warnings, fmt.Sprintf("unknown key %q in %s", key, ConfigFileName))
		}
	}
	return warnings
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Slug:            "modernize-legacy-java-code",
	Concurrency:     4,
	PollInterval:    10 * time.Second,
	Timeout:         10 * time.Minute,
	Retries:         1,
	SourceExt:       ".java",
	OutputDir:       "modernization-results",
	CredentialsFile: "credentials.json",
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Slug            string
	Concurrency     int
	PollInterval    time.Duration
	Timeout         time.Duration
	Retries         int
	SourceExt       string
	OutputDir       string
	CredentialsFile string
	ExcludePatterns []string
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	SlugSet            bool
	ConcurrencySet     bool
	PollIntervalSet    bool
	TimeoutSet         bool
	RetriesSet         bool
	SourceExtSet       bool
	OutputDirSet       bool
	CredentialsFileSet bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Slug               string
	SlugSet            bool
	Concurrency        int
	ConcurrencySet     bool
	PollInterval       time.Duration
	PollIntervalSet    bool
	Timeout            time.Duration
	TimeoutSet         bool
	Retries            int
	RetriesSet         bool
	OutputDir          string
	OutputDirSet       bool
	CredentialsFile    string
	CredentialsFileSet bool
}

// LoadEnvState reads environment variables and returns their state.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("REMOD_SLUG"); v != "" {
		state.Slug = v
		state.SlugSet = true
	}
	if v := os.Getenv("REMOD_CONCURRENCY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.Concurrency = i
			state.ConcurrencySet = true
		}
	}
	if v := os.Getenv("REMOD_POLL_INTERVAL"); v != "" {
		if d, ok := parseDurationOrSeconds(v); ok {
			state.PollInterval = d
			state.PollIntervalSet = true
		}
	}
	if v := os.Getenv("REMOD_TIMEOUT"); v != "" {
		if d, ok := parseDurationOrSeconds(v); ok {
			state.Timeout = d
			state.TimeoutSet = true
		}
	}
	if v := os.Getenv("REMOD_RETRIES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.Retries = i
			state.RetriesSet = true
		}
	}
	if v := os.Getenv("REMOD_OUTPUT_DIR"); v != "" {
		state.OutputDir = v
		state.OutputDirSet = true
	}
	if v := os.Getenv("REMOD_CREDENTIALS"); v != "" {
		state.CredentialsFile = v
		state.CredentialsFileSet = true
	}

	return state
}

func parseDurationOrSeconds(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults.
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	if cfg != nil {
		if cfg.Slug != nil {
			result.Slug = *cfg.Slug
		}
		if cfg.Concurrency != nil {
			result.Concurrency = *cfg.Concurrency
		}
		if cfg.PollInterval != nil {
			result.PollInterval = cfg.PollInterval.AsDuration()
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.Retries != nil {
			result.Retries = *cfg.Retries
		}
		if cfg.SourceExt != nil {
			result.SourceExt = *cfg.SourceExt
		}
		if cfg.OutputDir != nil {
			result.OutputDir = *cfg.OutputDir
		}
		if cfg.CredentialsFile != nil {
			result.CredentialsFile = *cfg.CredentialsFile
		}
		result.ExcludePatterns = append(result.ExcludePatterns, cfg.ExcludePatterns...)
	}

	if envState.SlugSet {
		result.Slug = envState.Slug
	}
	if envState.ConcurrencySet {
		result.Concurrency = envState.Concurrency
	}
	if envState.PollIntervalSet {
		result.PollInterval = envState.PollInterval
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.RetriesSet {
		result.Retries = envState.Retries
	}
	if envState.OutputDirSet {
		result.OutputDir = envState.OutputDir
	}
	if envState.CredentialsFileSet {
		result.CredentialsFile = envState.CredentialsFile
	}

	if flagState.SlugSet {
		result.Slug = flagValues.Slug
	}
	if flagState.ConcurrencySet {
		result.Concurrency = flagValues.Concurrency
	}
	if flagState.PollIntervalSet {
		result.PollInterval = flagValues.PollInterval
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.RetriesSet {
		result.Retries = flagValues.Retries
	}
	if flagState.SourceExtSet {
		result.SourceExt = flagValues.SourceExt
	}
	if flagState.OutputDirSet {
		result.OutputDir = flagValues.OutputDir
	}
	if flagState.CredentialsFileSet {
		result.CredentialsFile = flagValues.CredentialsFile
	}
	result.ExcludePatterns = append(result.ExcludePatterns, flagValues.ExcludePatterns...)

	return result
}
