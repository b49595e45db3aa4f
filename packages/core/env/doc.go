// Package env reads configuration variables from dotenv files and the
// process environment.
//
// Sources are exposed as LookupFunc values so they can be layered with
// Chain and handed to config.FromEnv.
package env
