package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/abdul-hamid-achik/pagexpect/packages/core/env"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, int64(30), c.RetryCount.Int64)
	assert.Equal(t, int64(100), c.PollInterval.Int64)
	assert.Equal(t, time.Second, c.Window())
	assert.Equal(t, "pixel", c.ScreenshotMode.String)
	assert.Equal(t, filepath.Join(".", "screenshots"), c.BaselineDir())
	assert.False(t, c.RetryCount.Valid)
	assert.NoError(t, c.Validate())

	p := c.Policy()
	assert.Equal(t, 30, p.Attempts)
	assert.Equal(t, 100*time.Millisecond, p.Interval)
}

func TestApply(t *testing.T) {
	base := DefaultConfig()
	other := Config{
		RetryCount:  null.IntFrom(5),
		ResourceDir: null.StringFrom(""),
		NoColor:     null.BoolFrom(true),
	}

	got := base.Apply(other)
	assert.Equal(t, int64(5), got.RetryCount.Int64)
	assert.Equal(t, ".", got.ResourceDir.String)
	assert.True(t, got.NoColor.Bool)
	assert.Equal(t, int64(1000), got.TimeCheckDelta.Int64)

	assert.Equal(t, got, got.Apply(Config{}))
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pagexpect.json"),
		[]byte(`{"retryCount": 10, "resourceDir": "./res", "screenshotMode": "histogram"}`), 0o644))

	c, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(10), c.RetryCount.Int64)
	assert.Equal(t, "./res", c.ResourceDir.String)
	assert.Equal(t, "histogram", c.ScreenshotMode.String)
	assert.Equal(t, int64(100), c.PollInterval.Int64)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"retryCount": "many"}`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(env.FromMap(map[string]string{
		"RETRY_COUNT":      "12",
		"TIME_CHECK_DELTA": "2500",
		"__RESOURCE_DIR__": "/tmp/res",
		"UPDATE_BASELINES": "true",
		"NO_COLOR":         "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, null.IntFrom(12), c.RetryCount)
	assert.Equal(t, null.IntFrom(2500), c.TimeCheckDelta)
	assert.Equal(t, null.StringFrom("/tmp/res"), c.ResourceDir)
	assert.Equal(t, null.BoolFrom(true), c.UpdateBaselines)
	assert.Equal(t, null.BoolFrom(true), c.NoColor)
	assert.False(t, c.PollInterval.Valid)
	assert.False(t, c.MaxEvents.Valid)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(env.FromMap(map[string]string{"RETRY_COUNT": "lots"}))
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "pagexpect.json")
	require.NoError(t, os.WriteFile(configPath,
		[]byte(`{"retryCount": 10, "pollInterval": 50, "timeCheckDelta": 1500}`), 0o644))
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POLL_INTERVAL=20\nTIME_CHECK_DELTA=1800\n"), 0o644))
	t.Setenv("TIME_CHECK_DELTA", "3000")

	c, err := Load(configPath, envFile)
	require.NoError(t, err)

	assert.Equal(t, int64(10), c.RetryCount.Int64, "file over defaults")
	assert.Equal(t, int64(20), c.PollInterval.Int64, "dotenv over file")
	assert.Equal(t, int64(3000), c.TimeCheckDelta.Int64, "environment over dotenv")
}

func TestLoad_ValidationFails(t *testing.T) {
	t.Setenv("RETRY_COUNT", "0")

	_, err := Load("", "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"retry count", func(c *Config) { c.RetryCount = null.IntFrom(0) }},
		{"poll interval", func(c *Config) { c.PollInterval = null.IntFrom(-1) }},
		{"window", func(c *Config) { c.TimeCheckDelta = null.IntFrom(-5) }},
		{"max events", func(c *Config) { c.MaxEvents = null.IntFrom(-1) }},
		{"mode", func(c *Config) { c.ScreenshotMode = null.StringFrom("ssim") }},
		{"log level", func(c *Config) { c.LogLevel = null.StringFrom("chatty") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := DefaultConfig().Apply(Config{LogLevel: null.StringFrom("debug"), NoColor: null.BoolFrom(true)})

	l := newLogger(c, &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("matcher", "toMatchText").Debug("retrying")
	assert.Contains(t, buf.String(), "matcher=toMatchText")

	assert.Equal(t, logrus.WarnLevel, NewLogger(DefaultConfig()).GetLevel())
}
