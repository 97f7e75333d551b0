package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	HubSpot  HubSpotConfig  `mapstructure:"hubspot"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Session  SessionConfig  `mapstructure:"session"`
	Template TemplateConfig `mapstructure:"template"`
	Database DatabaseConfig `mapstructure:"database"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Email    EmailConfig    `mapstructure:"email"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// HubSpotConfig holds settings for the CRM boundary. APIKey is the
// process-wide fallback; a key stored on the user's session wins.
type HubSpotConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// AuthConfig holds the login gate user table.
type AuthConfig struct {
	Users map[string]UserCredential `mapstructure:"users"`
}

// UserCredential is one entry of the login gate. PasswordHash is a bcrypt hash.
type UserCredential struct {
	Name         string `mapstructure:"name"`
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	Secure     bool   `mapstructure:"secure"`
}

// TemplateConfig points at the on-disk default template. A per-session
// uploaded template takes precedence over it.
type TemplateConfig struct {
	DefaultPath string `mapstructure:"default_path"`
}

type DatabaseConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// AuditConfig enables the postgres-backed generation audit log.
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EmailConfig enables packet delivery through AWS SES.
type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
