package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Escrow    EscrowConfig    `yaml:"escrow"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Alert     AlertConfig     `yaml:"alert"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings. Ignored when
// Store is "memory".
type DatabaseConfig struct {
	Store    string `yaml:"store"` // "postgres" or "memory"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains token settings for the authorization gate
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	TokenExpiryMinutes int    `yaml:"token_expiry_minutes"`
}

// EscrowConfig contains the one-time bootstrap identities: the admin
// principal, the escrow custody account, the payment-asset reference, and
// the bcrypt hash of the operator secret used to mint session tokens.
type EscrowConfig struct {
	AdminAddress       string `yaml:"admin_address"`
	EscrowAccount      string `yaml:"escrow_account"`
	PaymentAsset       string `yaml:"payment_asset"`
	OperatorSecretHash string `yaml:"operator_secret_hash"`
}

// LedgerConfig contains the external asset-ledger endpoint
type LedgerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AlertConfig contains operator email alert settings
type AlertConfig struct {
	Enabled        bool   `yaml:"enabled"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	ToEmail        string `yaml:"to_email"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ConservationAudit string `yaml:"conservation_audit"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Escrow bootstrap
	if val := os.Getenv("ESCROW_ADMIN_ADDRESS"); val != "" {
		c.Escrow.AdminAddress = val
	}
	if val := os.Getenv("ESCROW_ACCOUNT"); val != "" {
		c.Escrow.EscrowAccount = val
	}
	if val := os.Getenv("ESCROW_PAYMENT_ASSET"); val != "" {
		c.Escrow.PaymentAsset = val
	}
	if val := os.Getenv("ESCROW_OPERATOR_SECRET_HASH"); val != "" {
		c.Escrow.OperatorSecretHash = val
	}

	// Asset ledger
	if val := os.Getenv("LEDGER_BASE_URL"); val != "" {
		c.Ledger.BaseURL = val
	}

	// Alerting
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Alert.SendGridAPIKey = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Store == "" {
		c.Database.Store = "postgres"
	}
	if c.Database.Store != "postgres" && c.Database.Store != "memory" {
		return fmt.Errorf("unsupported store type: %s", c.Database.Store)
	}
	if c.Database.Store == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.TokenExpiryMinutes <= 0 {
		c.JWT.TokenExpiryMinutes = 60
	}

	// Escrow bootstrap validation
	if c.Escrow.AdminAddress == "" {
		return fmt.Errorf("escrow admin address is required")
	}
	if c.Escrow.EscrowAccount == "" {
		return fmt.Errorf("escrow account address is required")
	}
	if c.Escrow.PaymentAsset == "" {
		return fmt.Errorf("payment asset reference is required")
	}
	if c.Escrow.OperatorSecretHash == "" {
		return fmt.Errorf("operator secret hash is required")
	}

	// Asset ledger validation
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("asset ledger base URL is required")
	}
	if c.Ledger.TimeoutSeconds <= 0 {
		c.Ledger.TimeoutSeconds = 10
	}

	// Alerting validation
	if c.Alert.Enabled {
		if c.Alert.SendGridAPIKey == "" || c.Alert.FromEmail == "" || c.Alert.ToEmail == "" {
			return fmt.Errorf("alerting enabled but sendgrid settings are incomplete")
		}
	}

	// Scheduler defaults
	if c.Scheduler.ConservationAudit == "" {
		c.Scheduler.ConservationAudit = "0 */5 * * * *" // every five minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
