package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transaction modes.
const (
	TxnModePurchase  = "purchase"
	TxnModeAuthorize = "authorize"
)

// Hosted-page integration modes.
const (
	IntegrationModal    = "modal"
	IntegrationEmbedded = "embedded"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Store         StoreConfig         `mapstructure:"store"`
	Platform      PlatformConfig      `mapstructure:"platform"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SSLMode         string        `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    int           `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

// GatewayConfig holds the merchant's processor settings.
type GatewayConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Sandbox           bool   `mapstructure:"sandbox"`
	PublicKey         string `mapstructure:"public_key"`
	PrivateKey        string `mapstructure:"private_key"`
	SandboxPublicKey  string `mapstructure:"sandbox_public_key"`
	SandboxPrivateKey string `mapstructure:"sandbox_private_key"`

	// TxnMode selects between immediate purchase and authorize-then-
	// capture. The return handler dispatches strictly on this value.
	TxnMode         string `mapstructure:"txn_mode"`
	IntegrationMode string `mapstructure:"integration_mode"`
	ModalColor      string `mapstructure:"modal_color"`

	// APIBase overrides the processor endpoint; empty means the
	// production default.
	APIBase   string `mapstructure:"api_base"`
	HostedURL string `mapstructure:"hosted_url"`

	// CallbackURL is this service's own return-handler endpoint, which
	// the hosted page posts the card token back to.
	CallbackURL string `mapstructure:"callback_url"`

	Debug   bool   `mapstructure:"debug"`
	LogPath string `mapstructure:"log_path"`

	LockTTL    time.Duration     `mapstructure:"lock_ttl"`
	RetryDelay time.Duration     `mapstructure:"retry_delay"`
	MaxRetries int               `mapstructure:"max_retries"`
	Fee        HandlingFeeConfig `mapstructure:"fee"`
}

// HandlingFeeConfig is the optional surcharge applied before payment.
type HandlingFeeConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Text       string  `mapstructure:"text"`
	AmountType string  `mapstructure:"amount_type"`
	Amount     float64 `mapstructure:"amount"`
}

// StoreConfig is the merchant's store identity and ship-from address,
// embedded into checkout payloads.
type StoreConfig struct {
	Name          string `mapstructure:"name"`
	PriceDecimals int    `mapstructure:"price_decimals"`
	AddressLine1  string `mapstructure:"address_line1"`
	AddressLine2  string `mapstructure:"address_line2"`
	City          string `mapstructure:"city"`
	Zip           string `mapstructure:"zip"`
	Country       string `mapstructure:"country"`
	State         string `mapstructure:"state"`
}

// PlatformConfig holds the commerce platform URLs the return handler
// redirects buyers to.
type PlatformConfig struct {
	ReturnURL string `mapstructure:"return_url"`
	CartURL   string `mapstructure:"cart_url"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("SIMPLIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/simplify-gateway")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ActiveKeys returns the key pair for the selected environment.
func (g *GatewayConfig) ActiveKeys() (publicKey, privateKey string) {
	if g.Sandbox {
		return g.SandboxPublicKey, g.SandboxPrivateKey
	}
	return g.PublicKey, g.PrivateKey
}

// HasKeys reports whether the active environment has both keys set.
func (g *GatewayConfig) HasKeys() bool {
	pub, priv := g.ActiveKeys()
	return pub != "" && priv != ""
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive"))
	}
	if c.Redis.Port <= 0 {
		errs = append(errs, fmt.Errorf("redis.port must be positive"))
	}

	if c.Gateway.TxnMode != TxnModePurchase && c.Gateway.TxnMode != TxnModeAuthorize {
		errs = append(errs, fmt.Errorf("gateway.txn_mode must be %q or %q, got %q",
			TxnModePurchase, TxnModeAuthorize, c.Gateway.TxnMode))
	}
	if c.Gateway.IntegrationMode != IntegrationModal && c.Gateway.IntegrationMode != IntegrationEmbedded {
		errs = append(errs, fmt.Errorf("gateway.integration_mode must be %q or %q, got %q",
			IntegrationModal, IntegrationEmbedded, c.Gateway.IntegrationMode))
	}
	if c.Gateway.Enabled && !c.Gateway.HasKeys() {
		errs = append(errs, fmt.Errorf("gateway API keys are required when the gateway is enabled"))
	}
	if c.Gateway.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("gateway.lock_ttl must be positive"))
	}
	if c.Gateway.Fee.AmountType != "" &&
		c.Gateway.Fee.AmountType != "fixed" && c.Gateway.Fee.AmountType != "percentage" {
		errs = append(errs, fmt.Errorf("gateway.fee.amount_type must be \"fixed\" or \"percentage\""))
	}
	if c.Store.PriceDecimals < 0 || c.Store.PriceDecimals > 4 {
		errs = append(errs, fmt.Errorf("store.price_decimals must be between 0 and 4, got %d", c.Store.PriceDecimals))
	}

	// Production environment checks
	env := os.Getenv("ENV")
	if env == "production" || env == "prod" {
		if c.Database.Password == "" {
			errs = append(errs, fmt.Errorf("database.password required in production"))
		}
		if c.Gateway.Sandbox {
			errs = append(errs, fmt.Errorf("gateway.sandbox must be disabled in production"))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gateway")
	v.SetDefault("database.database", "gateway")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	// Gateway defaults
	v.SetDefault("gateway.enabled", false)
	v.SetDefault("gateway.sandbox", true)
	v.SetDefault("gateway.txn_mode", TxnModePurchase)
	v.SetDefault("gateway.integration_mode", IntegrationModal)
	v.SetDefault("gateway.modal_color", "#a46497")
	v.SetDefault("gateway.hosted_url", "https://www.simplify.com/commerce")
	v.SetDefault("gateway.callback_url", "http://localhost:8080/gateway/return")
	v.SetDefault("gateway.debug", false)
	v.SetDefault("gateway.log_path", "simplify-gateway.log")
	v.SetDefault("gateway.lock_ttl", "30s")
	v.SetDefault("gateway.retry_delay", "1s")
	v.SetDefault("gateway.max_retries", 3)
	v.SetDefault("gateway.fee.enabled", false)
	v.SetDefault("gateway.fee.text", "Handling Fee")
	v.SetDefault("gateway.fee.amount_type", "fixed")
	v.SetDefault("gateway.fee.amount", 0)

	// Store defaults
	v.SetDefault("store.name", "Store")
	v.SetDefault("store.price_decimals", 2)

	// Platform defaults
	v.SetDefault("platform.return_url", "http://localhost:3000/order-received")
	v.SetDefault("platform.cart_url", "http://localhost:3000/cart")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", true)

	// Instance ID
	v.SetDefault("instance_id", "simplify-gateway-1")
}

func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
