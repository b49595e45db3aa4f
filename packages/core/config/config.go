package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"

	"github.com/abdul-hamid-achik/pagexpect/packages/core/env"
	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
)

// Config represents the pagexpect configuration
type Config struct {
	RetryCount      null.Int    `json:"retryCount" envconfig:"RETRY_COUNT"`
	PollInterval    null.Int    `json:"pollInterval" envconfig:"POLL_INTERVAL"`      // milliseconds
	TimeCheckDelta  null.Int    `json:"timeCheckDelta" envconfig:"TIME_CHECK_DELTA"` // milliseconds
	ResourceDir     null.String `json:"resourceDir" envconfig:"__RESOURCE_DIR__"`
	ImgCmpPath      null.String `json:"imgcmpPath" envconfig:"IMGCMP_PATH"`
	ScreenshotMode  null.String `json:"screenshotMode" envconfig:"SCREENSHOT_MODE"`
	UpdateBaselines null.Bool   `json:"updateBaselines" envconfig:"UPDATE_BASELINES"`
	MaxEvents       null.Int    `json:"maxEvents" envconfig:"MAX_EVENTS"`
	LogLevel        null.String `json:"logLevel" envconfig:"LOG_LEVEL"`
	// NoColor follows the no-color.org convention: any non-empty NO_COLOR
	// disables colour, so it is read by FromEnv directly.
	NoColor null.Bool `json:"noColor" ignored:"true"`
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".pagexpect.json",
	"pagexpect.json",
}

// Apply returns c with every valid field of other applied on top.
func (c Config) Apply(other Config) Config {
	if other.RetryCount.Valid {
		c.RetryCount = other.RetryCount
	}
	if other.PollInterval.Valid {
		c.PollInterval = other.PollInterval
	}
	if other.TimeCheckDelta.Valid {
		c.TimeCheckDelta = other.TimeCheckDelta
	}
	if other.ResourceDir.Valid && other.ResourceDir.String != "" {
		c.ResourceDir = other.ResourceDir
	}
	if other.ImgCmpPath.Valid {
		c.ImgCmpPath = other.ImgCmpPath
	}
	if other.ScreenshotMode.Valid && other.ScreenshotMode.String != "" {
		c.ScreenshotMode = other.ScreenshotMode
	}
	if other.UpdateBaselines.Valid {
		c.UpdateBaselines = other.UpdateBaselines
	}
	if other.MaxEvents.Valid {
		c.MaxEvents = other.MaxEvents
	}
	if other.LogLevel.Valid && other.LogLevel.String != "" {
		c.LogLevel = other.LogLevel
	}
	if other.NoColor.Valid {
		c.NoColor = other.NoColor
	}
	return c
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	if c.RetryCount.Int64 < 1 {
		return fmt.Errorf("retryCount must be at least 1, got %d", c.RetryCount.Int64)
	}
	if c.PollInterval.Int64 < 0 {
		return fmt.Errorf("pollInterval must not be negative, got %d", c.PollInterval.Int64)
	}
	if c.TimeCheckDelta.Int64 < 0 {
		return fmt.Errorf("timeCheckDelta must not be negative, got %d", c.TimeCheckDelta.Int64)
	}
	if c.MaxEvents.Int64 < 0 {
		return fmt.Errorf("maxEvents must not be negative, got %d", c.MaxEvents.Int64)
	}
	switch strings.ToLower(c.ScreenshotMode.String) {
	case "pixel", "histogram":
	default:
		return fmt.Errorf("screenshotMode must be pixel or histogram, got %q", c.ScreenshotMode.String)
	}
	if _, err := parseLevel(c.LogLevel.String); err != nil {
		return err
	}
	return nil
}

// Policy is the retry budget for matchers and popup lookup.
func (c Config) Policy() retry.Policy {
	return retry.Policy{
		Attempts: int(c.RetryCount.Int64),
		Interval: time.Duration(c.PollInterval.Int64) * time.Millisecond,
	}
}

// Window is how far back event-log matchers look.
func (c Config) Window() time.Duration {
	return time.Duration(c.TimeCheckDelta.Int64) * time.Millisecond
}

// BaselineDir holds screenshot baselines and scratch screenshots.
func (c Config) BaselineDir() string {
	return filepath.Join(c.ResourceDir.String, "screenshots")
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var fileConf Config
	if err := json.Unmarshal(data, &fileConf); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return DefaultConfig().Apply(fileConf), nil
}

// FromEnv reads the variables named in the envconfig tags through lookup.
// Only variables that are present end up valid.
func FromEnv(lookup env.LookupFunc) (Config, error) {
	var conf Config
	if err := envconfig.Process("", &conf, func(key string) (string, bool) {
		return lookup(key)
	}); err != nil {
		return Config{}, err
	}
	if v, ok := lookup("NO_COLOR"); ok {
		conf.NoColor = null.BoolFrom(v != "")
	}
	return conf, nil
}

// Load layers defaults, the config file at path (searched for in the
// working directory when empty), envFile when set, and the process
// environment, then validates the result.
func Load(path, envFile string) (Config, error) {
	conf, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}

	sources := []env.LookupFunc{}
	if envFile != "" {
		vars, err := env.LoadDotEnv(envFile)
		if err != nil {
			return Config{}, err
		}
		sources = append(sources, env.FromMap(vars))
	}
	sources = append(sources, env.System())

	envConf, err := FromEnv(env.Chain(sources...))
	if err != nil {
		return Config{}, err
	}
	conf = conf.Apply(envConf)

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}
