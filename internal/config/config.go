package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-vault/internal/domain"
)

// CustodyMode selects where vaults keep their nfts
type CustodyMode string

const (
	// CustodyModeMemory keeps collections in process, for local runs and demos
	CustodyModeMemory CustodyMode = "memory"
	// CustodyModeEthereum holds nfts with a custodial account on an ethereum chain
	CustodyModeEthereum CustodyMode = "ethereum"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	ChainID           domain.Chain  `mapstructure:"chain_id"`
	CustodyPrivateKey string        `mapstructure:"custody_private_key"`
	ConfirmTimeout    time.Duration `mapstructure:"confirm_timeout"`
	OwnerWorkers      int           `mapstructure:"owner_workers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`  // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey  string   `mapstructure:"jwt_public_key"`
	APIKeys       []string `mapstructure:"api_keys"`
	WebhookSecret string   `mapstructure:"webhook_secret"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// HubConfig holds the bootstrap configuration of the vault hub.
// Settings saved in the database take precedence once the hub has been bootstrapped.
type HubConfig struct {
	Address           string        `mapstructure:"address"`
	Owner             string        `mapstructure:"owner"`
	RedeemMaxDeadline time.Duration `mapstructure:"redeem_max_deadline"`
	WhitelistPath     string        `mapstructure:"whitelist_path"`
	CustodyMode       CustodyMode   `mapstructure:"custody_mode"`
}

// APIConfig holds configuration for the vault daemon
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Auth       AuthConfig     `mapstructure:"auth"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Hub        HubConfig      `mapstructure:"hub"`
	Worker     WorkerConfig   `mapstructure:"worker"`
}

// LoadAPIConfig loads configuration for the vault daemon
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "VAULT_EVENTS")
	v.SetDefault("nats.consumer_name", "vault-custody-bridge")
	v.SetDefault("nats.ack_wait", "5m")
	v.SetDefault("nats.max_deliver", 10)
	v.SetDefault("nats.publish_timeout", "30s")
	v.SetDefault("ethereum.chain_id", "eip155:1")
	v.SetDefault("ethereum.confirm_timeout", "5m")
	v.SetDefault("ethereum.owner_workers", 8)
	v.SetDefault("hub.redeem_max_deadline", "24h")
	v.SetDefault("hub.custody_mode", string(CustodyModeMemory))
	v.SetDefault("worker.pool_size", 4)
	v.SetDefault("worker.queue_size", 256)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the fields the daemon cannot start without
func (c *APIConfig) Validate() error {
	if !common.IsHexAddress(c.Hub.Owner) {
		return fmt.Errorf("hub.owner must be an ethereum address, got %q", c.Hub.Owner)
	}
	if c.Hub.Address != "" && !common.IsHexAddress(c.Hub.Address) {
		return fmt.Errorf("hub.address must be an ethereum address, got %q", c.Hub.Address)
	}
	if c.Hub.RedeemMaxDeadline <= 0 {
		return errors.New("hub.redeem_max_deadline must be positive")
	}

	switch c.Hub.CustodyMode {
	case CustodyModeMemory:
	case CustodyModeEthereum:
		if c.Ethereum.RPCURL == "" {
			return errors.New("ethereum.rpc_url is required in ethereum custody mode")
		}
		if c.Ethereum.CustodyPrivateKey == "" {
			return errors.New("ethereum.custody_private_key is required in ethereum custody mode")
		}
		if !domain.IsValidChain(c.Ethereum.ChainID) {
			return fmt.Errorf("unsupported ethereum.chain_id %q", c.Ethereum.ChainID)
		}
	default:
		return fmt.Errorf("unsupported hub.custody_mode %q", c.Hub.CustodyMode)
	}

	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.publish_timeout",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.custody_private_key",
		"ethereum.confirm_timeout",
		"ethereum.owner_workers",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		"auth.webhook_secret",
		// Hub
		"hub.address",
		"hub.owner",
		"hub.redeem_max_deadline",
		"hub.whitelist_path",
		"hub.custody_mode",
		// Bridge worker pool
		"worker.pool_size",
		"worker.queue_size",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	// Create candidates list
	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// HubOwner returns the configured hub owner
func (c *HubConfig) HubOwner() common.Address {
	return common.HexToAddress(c.Owner)
}

// HubAddress returns the configured hub address, or the zero address when unset
func (c *HubConfig) HubAddress() common.Address {
	if c.Address == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Address)
}
