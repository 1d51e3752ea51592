package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// ReviewConfig contains tunables for the review engine.
type ReviewConfig struct {
	// DefaultDueLimit is the number of due atoms returned when the caller
	// does not specify a limit.
	DefaultDueLimit int `mapstructure:"default_due_limit" validate:"required,gt=0"`

	// MaxDueLimit is the system ceiling on due atoms per request,
	// enforced regardless of the caller-requested limit.
	MaxDueLimit int `mapstructure:"max_due_limit" validate:"required,gt=0"`

	// ResponseRetentionDays is how long review response records are kept
	// before the purge sweep removes them.
	ResponseRetentionDays int `mapstructure:"response_retention_days" validate:"required,gt=0"`

	// SessionRetentionDays is how long session records are kept after start.
	SessionRetentionDays int `mapstructure:"session_retention_days" validate:"required,gt=0"`
}
