// Package config provides configuration loading for the wafflebot service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bot.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Slack      SlackConfig      `mapstructure:"slack"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	Members    MembersConfig    `mapstructure:"members"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// TaskTimeout bounds the fire-and-forget background tasks spawned after
	// the webhook response has been written.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration for the waffle ledger.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a pgx connection string.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// RedisConfig holds the optional Redis backing for the deploy correlation
// store. When disabled the correlation map is process-local and lost on
// restart.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// SlackConfig holds Slack API and channel settings.
type SlackConfig struct {
	BotToken string `mapstructure:"bot_token"`
	// VerificationToken is the shared secret Slack echoes back in webhook
	// bodies. Requests with a different token are rejected with 403.
	VerificationToken string `mapstructure:"verification_token"`
	WatcherChannelID  string `mapstructure:"watcher_channel_id"`
	DeployChannelID   string `mapstructure:"deploy_channel_id"`
	FallbackChannelID string `mapstructure:"fallback_channel_id"`
}

// GitHubConfig holds GitHub API settings for the dashboard aggregator.
type GitHubConfig struct {
	Organization string `mapstructure:"organization"`
	Token        string `mapstructure:"token"`
	APIBaseURL   string `mapstructure:"api_base_url"`
}

// MembersConfig holds the member directory endpoint.
type MembersConfig struct {
	URL string `mapstructure:"url"`
}

// SummarizerConfig holds release note summarization settings.
type SummarizerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxLength int    `mapstructure:"max_length"`
}

// DashboardConfig holds weekly dashboard settings.
type DashboardConfig struct {
	TopK      int           `mapstructure:"top_k"`
	Window    time.Duration `mapstructure:"window"`
	Interval  time.Duration `mapstructure:"interval"`
	Scheduled bool          `mapstructure:"scheduled"`
	ChannelID string        `mapstructure:"channel_id"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables use the WAFFLEBOT_ prefix and override
// file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.task_timeout", "30s")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "waffle")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "waffle")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.enabled", false)

	v.SetDefault("github.api_base_url", "https://api.github.com")

	v.SetDefault("summarizer.enabled", false)
	v.SetDefault("summarizer.model", "gpt-3.5-turbo")
	v.SetDefault("summarizer.max_length", 100)

	v.SetDefault("dashboard.top_k", 3)
	v.SetDefault("dashboard.window", "168h")
	v.SetDefault("dashboard.interval", "168h")
	v.SetDefault("dashboard.scheduled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("WAFFLEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
