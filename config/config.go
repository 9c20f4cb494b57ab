// Package config resolves settings from defaults, an optional YAML file, a
// .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     int

	JWTSecret string
	TokenTTL  time.Duration

	Store     StoreConfig
	Braintree BraintreeConfig
	Gateway   GatewayConfig
	Order     OrderConfig

	CORSOrigins []string
}

type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	Timeout       time.Duration
}

type BraintreeConfig struct {
	Environment string
	MerchantID  string
	PublicKey   string
	PrivateKey  string
}

type GatewayConfig struct {
	Timeout time.Duration
}

type OrderConfig struct {
	PersistAttempts   int
	RetryDelay        time.Duration
	StrictTransitions bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8080)
	v.SetDefault("token_ttl", 7*24*time.Hour)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("mongo.database", "ecommerce")
	v.SetDefault("db_port", "5432")
	v.SetDefault("braintree.environment", "sandbox")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("order.persist_attempts", 1)
	v.SetDefault("order.retry_delay", 200*time.Millisecond)
	v.SetDefault("order.strict_transitions", false)
	v.SetDefault("cors.allow_origins", []string{"*"})
}

// Load reads configuration. path may be empty; STOREFRONT_CONFIG is used then.
// A missing .env file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("STOREFRONT_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		AppEnv:    v.GetString("app_env"),
		LogLevel:  v.GetString("log_level"),
		Port:      v.GetInt("port"),
		JWTSecret: v.GetString("jwt_secret"),
		TokenTTL:  v.GetDuration("token_ttl"),
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("store.driver")),
			MongoURI:      v.GetString("mongo.uri"),
			MongoDatabase: v.GetString("mongo.database"),
			PostgresDSN:   postgresDSN(v),
			Timeout:       v.GetDuration("store.timeout"),
		},
		Braintree: BraintreeConfig{
			Environment: v.GetString("braintree.environment"),
			MerchantID:  v.GetString("braintree.merchant_id"),
			PublicKey:   v.GetString("braintree.public_key"),
			PrivateKey:  v.GetString("braintree.private_key"),
		},
		Gateway: GatewayConfig{Timeout: v.GetDuration("gateway.timeout")},
		Order: OrderConfig{
			PersistAttempts:   v.GetInt("order.persist_attempts"),
			RetryDelay:        v.GetDuration("order.retry_delay"),
			StrictTransitions: v.GetBool("order.strict_transitions"),
		},
		CORSOrigins: splitList(v.GetStringSlice("cors.allow_origins")),
	}
	return cfg, nil
}

// postgresDSN prefers DATABASE_URL and falls back to the DB_* parts.
func postgresDSN(v *viper.Viper) string {
	if url := v.GetString("database_url"); url != "" {
		return url
	}
	if v.GetString("db_host") == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		v.GetString("db_host"), v.GetString("db_user"), v.GetString("db_password"),
		v.GetString("db_name"), v.GetString("db_port"),
	)
}

// splitList accepts both YAML lists and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ValidateServe reports settings the HTTP server cannot start without.
func (c Config) ValidateServe() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if !strings.EqualFold(c.Braintree.Environment, "offline") {
		if c.Braintree.MerchantID == "" || c.Braintree.PublicKey == "" || c.Braintree.PrivateKey == "" {
			errs = append(errs, errors.New("braintree merchant id, public key and private key are required"))
		}
	}
	return errors.Join(errs...)
}
