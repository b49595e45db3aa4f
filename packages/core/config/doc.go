// Package config handles configuration loading for pagexpect.
//
// Values are layered, later sources winning:
//   - built-in defaults
//   - .pagexpect.json or pagexpect.json
//   - a dotenv file
//   - the process environment (RETRY_COUNT, TIME_CHECK_DELTA, ...)
//
// Fields are nullable so a source only overrides what it actually sets.
package config
