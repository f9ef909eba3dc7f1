package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Database holds the database configuration.
	Database DatabaseConfig `mapstructure:",squash"`

	// Redis holds the master-data cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Carriers holds credentials and endpoints for the shipping carriers.
	Carriers CarriersConfig `mapstructure:",squash"`

	// Sender is the pick-up address sent to every carrier.
	Sender SenderConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy for carrier traffic.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// DatabaseConfig holds database connection details.
type DatabaseConfig struct {
	// Driver selects the GORM dialector: "sqlite" or "postgres".
	Driver string `mapstructure:"DB_DRIVER" default:"sqlite"`
	// DSN is the driver-specific data source name.
	DSN string `mapstructure:"DB_DSN" default:"file:order-hub.db?_foreign_keys=on"`
	// LogLevel is the GORM log level (silent, error, warn, info).
	LogLevel string `mapstructure:"DB_LOG_LEVEL" default:"warn"`
	// MaxOpenConns caps the connection pool.
	MaxOpenConns int `mapstructure:"DB_MAX_OPEN_CONNS" default:"10"`
}

// RedisConfig holds the Redis connection used for carrier master data.
type RedisConfig struct {
	// URL is the Redis URL. Empty disables caching.
	URL string `mapstructure:"REDIS_URL"`
	// MasterDataTTLSeconds is how long province/service lists stay cached.
	MasterDataTTLSeconds int `mapstructure:"MASTER_DATA_TTL_SECONDS" default:"3600"`
}

// MasterDataTTL returns the cache TTL as a duration.
func (r RedisConfig) MasterDataTTL() time.Duration {
	return time.Duration(r.MasterDataTTLSeconds) * time.Second
}

// CarriersConfig holds the per-carrier API keys and base URLs.
// A missing API key means the carrier is not connected.
type CarriersConfig struct {
	GHNAPIKey         string `mapstructure:"GHN_API_KEY"`
	GHTKAPIKey        string `mapstructure:"GHTK_API_KEY"`
	ViettelPostAPIKey string `mapstructure:"VIETTEL_POST_API_KEY"`
	JTExpressAPIKey   string `mapstructure:"JT_EXPRESS_API_KEY"`
	AfterShipAPIKey   string `mapstructure:"AFTERSHIP_API_KEY"`

	GHNBaseURL         string `mapstructure:"GHN_BASE_URL" default:"https://online-gateway.ghn.vn/shiip/public-api"`
	GHTKBaseURL        string `mapstructure:"GHTK_BASE_URL" default:"https://services.giaohangtietkiem.vn"`
	ViettelPostBaseURL string `mapstructure:"VIETTEL_POST_BASE_URL" default:"https://partner.viettelpost.vn/v2"`
	JTExpressBaseURL   string `mapstructure:"JT_EXPRESS_BASE_URL" default:"https://api.jtexpress.vn"`
	AfterShipBaseURL   string `mapstructure:"AFTERSHIP_BASE_URL" default:"https://api.aftership.com/v4"`

	// TimeoutSeconds bounds every carrier HTTP call.
	TimeoutSeconds int `mapstructure:"CARRIER_TIMEOUT_SECONDS" default:"15"`
	// RateLimitRPS is the per-carrier request budget per second.
	RateLimitRPS int `mapstructure:"CARRIER_RATE_LIMIT_RPS" default:"5"`
}

// Timeout returns the carrier HTTP timeout.
func (c CarriersConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SenderConfig is the shop's pick-up address.
type SenderConfig struct {
	Name     string `mapstructure:"SENDER_NAME" default:"Order Hub"`
	Phone    string `mapstructure:"SENDER_PHONE" default:"0987654321"`
	Address  string `mapstructure:"SENDER_ADDRESS" default:"Pick-up address"`
	Province string `mapstructure:"SENDER_PROVINCE" default:"Hà Nội"`
	District string `mapstructure:"SENDER_DISTRICT" default:"Quận Cầu Giấy"`
}

// ProxyConfig configures the outbound HTTP proxy.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if config.Database.Driver != "sqlite" && config.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER: %q", config.Database.Driver)
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
