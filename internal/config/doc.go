// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A missing or malformed source endpoint is a configuration error and stops the
// watcher before its first cycle.
package config
