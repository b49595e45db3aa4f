package config

import (
	"gopkg.in/guregu/null.v3"

	"github.com/abdul-hamid-achik/pagexpect/packages/core/retry"
)

const (
	DefaultTimeCheckDelta = 1000 // milliseconds
	DefaultResourceDir    = "."
	DefaultScreenshotMode = "pixel"
	DefaultLogLevel       = "warn"
)

// DefaultConfig returns a configuration with default values. None of the
// fields are marked valid, so applying it on top of another config is a no-op.
func DefaultConfig() Config {
	return Config{
		RetryCount:      null.NewInt(retry.DefaultAttempts, false),
		PollInterval:    null.NewInt(retry.DefaultInterval.Milliseconds(), false),
		TimeCheckDelta:  null.NewInt(DefaultTimeCheckDelta, false),
		ResourceDir:     null.NewString(DefaultResourceDir, false),
		ImgCmpPath:      null.NewString("", false),
		ScreenshotMode:  null.NewString(DefaultScreenshotMode, false),
		UpdateBaselines: null.NewBool(false, false),
		MaxEvents:       null.NewInt(0, false),
		LogLevel:        null.NewString(DefaultLogLevel, false),
		NoColor:         null.NewBool(false, false),
	}
}
