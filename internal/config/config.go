package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Auth modes.
const (
	AuthModeFirebase = "firebase"
	AuthModeLocal    = "local"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port             string
	AppEnv           string
	FrontendURL      string
	RabbitMQURL      string
	RequestTimeout   time.Duration
	AnalyticsTimeout time.Duration

	Auth  AuthConfig
	Store StoreConfig
}

// AuthConfig selects and configures the identity verifier.
type AuthConfig struct {
	Mode                  string
	ServiceAccountJSON    string
	ServiceAccountFile    string
	LocalSecret           string
	CarsAdminDomain       string
	CategoriesAdminDomain string
}

// StoreConfig selects the backing database.
type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	DSN           string
}

// Addr is the listen address for Port.
func (c *Config) Addr() string { return ":" + c.Port }

// IsDevelopment reports whether error responses may carry stack traces.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("SERVICE_ACCOUNT_FILE", "serviceAccountKey.json")
	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("LOCAL_AUTH_SECRET", "")
	v.SetDefault("ADMIN_CARS_DOMAIN", "autoluxe.com")
	v.SetDefault("ADMIN_CATEGORIES_DOMAIN", "esrent.ae")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MONGO_DATABASE", "carrental")
	v.SetDefault("DATABASE_DSN", "carrental.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("ANALYTICS_TIMEOUT", "30s")
}

// Load reads the optional .env file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		grip.Warning(message.WrapError(err, message.Fields{
			"message": "could not read .env file",
		}))
	}

	v := viper.New()
	setDefaults(v)
	// an empty ADMIN_*_DOMAIN selects the admin claim policy
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString("PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		FrontendURL:      v.GetString("FRONTEND_URL"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		AnalyticsTimeout: v.GetDuration("ANALYTICS_TIMEOUT"),
		Auth: AuthConfig{
			Mode:                  v.GetString("AUTH_MODE"),
			ServiceAccountJSON:    v.GetString("FIREBASE_SERVICE_ACCOUNT_JSON"),
			ServiceAccountFile:    v.GetString("SERVICE_ACCOUNT_FILE"),
			LocalSecret:           v.GetString("LOCAL_AUTH_SECRET"),
			CarsAdminDomain:       v.GetString("ADMIN_CARS_DOMAIN"),
			CategoriesAdminDomain: v.GetString("ADMIN_CATEGORIES_DOMAIN"),
		},
		Store: StoreConfig{
			Driver:        v.GetString("STORE_DRIVER"),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
			DSN:           v.GetString("DATABASE_DSN"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	catcher := grip.NewBasicCatcher()
	switch c.Store.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		catcher.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Auth.Mode {
	case AuthModeFirebase, AuthModeLocal:
	default:
		catcher.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}
	catcher.NewWhen(c.Port == "", "PORT must be set")
	catcher.NewWhen(c.RequestTimeout <= 0, "REQUEST_TIMEOUT must be positive")
	catcher.NewWhen(c.AnalyticsTimeout <= 0, "ANALYTICS_TIMEOUT must be positive")
	return errors.Wrap(catcher.Resolve(), "invalid configuration")
}
