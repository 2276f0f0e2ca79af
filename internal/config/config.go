// Package config loads application settings from defaults, an optional
// YAML file and LEDGER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/davidsheshee-hash/shop-ledger/internal/stats"
	"github.com/davidsheshee-hash/shop-ledger/internal/storage"
)

// EnvPrefix prefixes every environment variable, e.g. LEDGER_HTTP_PORT.
const EnvPrefix = "LEDGER"

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	AMQP    AMQPConfig    `mapstructure:"amqp"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Logging LoggingConfig `mapstructure:"logging"`
	Display DisplayConfig `mapstructure:"display"`

	// KeywordRules replaces the fallback icon table; only settable from the config file
	KeywordRules []stats.KeywordRule `mapstructure:"keyword_rules"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // mutating requests per minute per client
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	FileDir    string `mapstructure:"file_dir"`
	BlobKey    string `mapstructure:"blob_key"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type SheetsConfig struct {
	SpreadsheetID     string        `mapstructure:"spreadsheet_id"`
	CredentialsJSON   string        `mapstructure:"credentials_json"`
	CredentialsFile   string        `mapstructure:"credentials_file"`
	MonthlySheet      string        `mapstructure:"monthly_sheet"`
	IncomeSheet       string        `mapstructure:"income_sheet"`
	ExpenseSheet      string        `mapstructure:"expense_sheet"`
	TransactionsSheet string        `mapstructure:"transactions_sheet"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DisplayConfig struct {
	Locale   string `mapstructure:"locale"`
	Timezone string `mapstructure:"timezone"`
}

// Enabled reports whether a spreadsheet is configured.
func (s SheetsConfig) Enabled() bool {
	return strings.TrimSpace(s.SpreadsheetID) != ""
}

// Enabled reports whether a broker is configured.
func (a AMQPConfig) Enabled() bool {
	return strings.TrimSpace(a.URL) != ""
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for AutomaticEnv to apply during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8081")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.rate_limit", 60)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlite_path", "./data/ledger.db")
	v.SetDefault("storage.file_dir", "./data")
	v.SetDefault("storage.blob_key", "shop_ledger_transactions")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "ledger")
	v.SetDefault("amqp.queue", "ledger.changed")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_json", "")
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.monthly_sheet", "Monthly")
	v.SetDefault("sheets.income_sheet", "Income by category")
	v.SetDefault("sheets.expense_sheet", "Expense by category")
	v.SetDefault("sheets.transactions_sheet", "Transactions")
	v.SetDefault("sheets.refresh_interval", 15*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("display.locale", "zh-CN")
	v.SetDefault("display.timezone", "Local")
}

// NewViper returns a viper instance with defaults and env binding. When
// configFile is empty, ledger.yaml is searched in the working directory
// and $HOME/.config/shop-ledger; a missing file is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "shop-ledger"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration from defaults, the optional file and the environment.
func Load(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Location returns the configured time zone; empty or "Local" means the system zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Display.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.HTTP.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.HTTP.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	if c.HTTP.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.HTTP.RateLimit))
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		errors = append(errors, "HTTP read and write timeouts must be positive")
	}

	validBackends := []string{"sqlite", "file", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.Storage.Backend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.Storage.Backend, validBackends))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.SQLitePath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.Storage.Backend == "file" && c.Storage.FileDir == "" {
		errors = append(errors, "file directory cannot be empty when using file backend")
	}
	if !storage.ValidKey(c.Storage.BlobKey) {
		errors = append(errors, fmt.Sprintf("invalid blob key '%s': use letters, digits, '_', '-' or '.'", c.Storage.BlobKey))
	}

	if c.AMQP.Enabled() {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsFile != "" {
			if _, err := os.Stat(c.Sheets.CredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.Sheets.CredentialsFile))
			}
		}
		if c.Sheets.RefreshInterval < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid sheets refresh interval %v: must be at least 1 minute", c.Sheets.RefreshInterval))
		} else if c.Sheets.RefreshInterval > 24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid sheets refresh interval %v: must be at most 24 hours", c.Sheets.RefreshInterval))
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.Logging.Level))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Display.Timezone, err))
	}

	for i, rule := range c.KeywordRules {
		if len(rule.Keywords) == 0 || rule.Icon == "" {
			errors = append(errors, fmt.Sprintf("keyword rule %d needs keywords and an icon", i+1))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
