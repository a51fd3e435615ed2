package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Supported order store backends.
const (
	OrderStoreRedis    = "redis"
	OrderStoreFile     = "file"
	OrderStorePostgres = "postgres"
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
	// PublicBaseURL is the externally reachable URL used to build payment return links.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	// SessionTTL is how long carts, filters and alerts live in Redis, in seconds.
	SessionTTL int `mapstructure:"SESSION_TTL" default:"2592000"`

	// Catalog holds the remote product catalog configuration.
	Catalog CatalogConfig `mapstructure:",squash"`

	// Redis holds the Redis connection details.
	Redis RedisConfig `mapstructure:",squash"`

	// Payment holds the payment provider configuration.
	Payment PaymentConfig `mapstructure:",squash"`

	// Orders holds the order persistence configuration.
	Orders OrdersConfig `mapstructure:",squash"`

	// Broker holds the message broker configuration for order events.
	Broker BrokerConfig `mapstructure:",squash"`
}

// CatalogConfig holds the settings for the remote product API.
type CatalogConfig struct {
	// URL is the base URL of the FakeStore-compatible product API.
	URL string `mapstructure:"CATALOG_URL" default:"https://fakestoreapi.com"`
	// Timeout is the HTTP timeout for catalog requests, in seconds.
	Timeout int `mapstructure:"CATALOG_TIMEOUT" default:"10"`
	// ProductsTTL is the cache lifetime of the product list, in seconds.
	ProductsTTL int `mapstructure:"PRODUCTS_CACHE_TTL" default:"3600"`
	// CategoriesTTL is the cache lifetime of the category list, in seconds.
	CategoriesTTL int `mapstructure:"CATEGORIES_CACHE_TTL" default:"86400"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	// URL is the Redis connection string (redis://[:password@]host[:port][/database]).
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// PaymentConfig holds the credentials for the payment provider.
type PaymentConfig struct {
	// APIURL is the base URL of the Stripe-compatible API.
	APIURL string `mapstructure:"STRIPE_API_URL" default:"https://api.stripe.com"`
	// SecretKey authenticates server-side API calls.
	SecretKey string `mapstructure:"STRIPE_SECRET_KEY" required:"true"`
	// WebhookSecret verifies webhook signatures.
	WebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET" required:"true"`
	// Currency is the ISO currency code charged at checkout.
	Currency string `mapstructure:"CHECKOUT_CURRENCY" default:"usd"`
}

// OrdersConfig selects and configures the order store.
type OrdersConfig struct {
	// Store is one of redis, file or postgres.
	Store string `mapstructure:"ORDER_STORE" default:"redis"`
	// File is the JSON file used by the file store.
	File string `mapstructure:"ORDERS_FILE" default:"data/orders.json"`
	// DatabaseURL is the PostgreSQL DSN used by the postgres store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
}

// BrokerConfig holds RabbitMQ settings. An empty URL disables event publishing.
type BrokerConfig struct {
	// URL is the AMQP connection string.
	URL string `mapstructure:"RABBITMQ_URL"`
	// Exchange is the topic exchange order events are published to.
	Exchange string `mapstructure:"RABBITMQ_EXCHANGE" default:"storefront.events"`
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

	if err := config.validateOrderStore(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateOrderStore checks the selected order backend and its dependencies.
func (c *AppConfig) validateOrderStore() error {
	c.Orders.Store = strings.ToLower(strings.TrimSpace(c.Orders.Store))

	switch c.Orders.Store {
	case OrderStoreRedis, OrderStoreFile:
		return nil
	case OrderStorePostgres:
		if c.Orders.DatabaseURL == "" {
			return fmt.Errorf("missing required configuration: DATABASE_URL (ORDER_STORE=postgres)")
		}
		return nil
	default:
		return fmt.Errorf("invalid ORDER_STORE %q: must be redis, file or postgres", c.Orders.Store)
	}
}

// processTags iterates over the struct fields and sets default values in Viper.
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

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
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
