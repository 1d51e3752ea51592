// Package config defines the application configuration structures and
// loading logic. Configuration comes from environment variables with a
// MICRONOTES_ prefix, optionally layered over a config.yaml file.
package config
