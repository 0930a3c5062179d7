package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bundle sources
const (
	SourceCSV      = "csv"
	SourceDatabase = "database"
	SourceS3       = "s3"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Bundle    BundleConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Cache     CacheConfig
	HTTP      HTTPConfig
	Dashboard DashboardConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// BundleConfig selects where the five input tables are read from
type BundleConfig struct {
	Source            string // csv, database, s3
	Dir               string // directory of the csv files (csv source)
	OrderItemsFile    string
	OrderPaymentsFile string
	ProductsFile      string
	OrdersFile        string
	CustomersFile     string
}

// Files maps table names to their csv file names
func (b BundleConfig) Files() map[string]string {
	return map[string]string{
		"order_items":    b.OrderItemsFile,
		"order_payments": b.OrderPaymentsFile,
		"products":       b.ProductsFile,
		"orders":         b.OrdersFile,
		"customers":      b.CustomersFile,
	}
}

// DatabaseConfig holds database connection settings for the database source
type DatabaseConfig struct {
	Driver       string // sqlite, postgres
	Path         string // sqlite file, ":memory:" for an in-memory database
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig holds S3-compatible object storage settings for the s3 source
type StorageConfig struct {
	Endpoint     string // custom endpoint for MinIO/RustFS; empty uses AWS
	Region       string
	Bucket       string
	Prefix       string // key prefix of the csv files inside the bucket
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	UseSSL       bool
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled bool
	Backend string // memory, redis
	TTL     time.Duration
	Redis   RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
}

// DashboardConfig holds the default panel sizes
type DashboardConfig struct {
	TopN                     int
	GeoTopN                  int
	ExcludeUndefinedPayments bool
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DICOWI_ prefix (e.g., DICOWI_BUNDLE_DIR)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches
// for config.toml in the working directory and /app.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DICOWI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// booleans whose zero value is not the default
	v.SetDefault("dashboard.exclude_undefined_payments", true)
	v.SetDefault("storage.use_ssl", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Bundle: BundleConfig{
			Source:            v.GetString("bundle.source"),
			Dir:               v.GetString("bundle.dir"),
			OrderItemsFile:    v.GetString("bundle.order_items_file"),
			OrderPaymentsFile: v.GetString("bundle.order_payments_file"),
			ProductsFile:      v.GetString("bundle.products_file"),
			OrdersFile:        v.GetString("bundle.orders_file"),
			CustomersFile:     v.GetString("bundle.customers_file"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("database.driver"),
			Path:         v.GetString("database.path"),
			Host:         v.GetString("database.host"),
			Port:         v.GetInt("database.port"),
			User:         v.GetString("database.user"),
			Password:     v.GetString("database.password"),
			DBName:       v.GetString("database.dbname"),
			SSLMode:      v.GetString("database.sslmode"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			Prefix:       v.GetString("storage.prefix"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			UseSSL:       v.GetBool("storage.use_ssl"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			Backend: v.GetString("cache.backend"),
			TTL:     v.GetDuration("cache.ttl"),
			Redis: RedisConfig{
				Host:     v.GetString("cache.redis.host"),
				Port:     v.GetInt("cache.redis.port"),
				Password: v.GetString("cache.redis.password"),
				DB:       v.GetInt("cache.redis.db"),
			},
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Dashboard: DashboardConfig{
			TopN:                     v.GetInt("dashboard.top_n"),
			GeoTopN:                  v.GetInt("dashboard.geo_top_n"),
			ExcludeUndefinedPayments: v.GetBool("dashboard.exclude_undefined_payments"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dicowi"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Bundle.Source == "" {
		cfg.Bundle.Source = SourceCSV
	}
	if cfg.Bundle.Dir == "" {
		cfg.Bundle.Dir = "data"
	}
	if cfg.Bundle.OrderItemsFile == "" {
		cfg.Bundle.OrderItemsFile = "olist_order_items_dataset.csv"
	}
	if cfg.Bundle.OrderPaymentsFile == "" {
		cfg.Bundle.OrderPaymentsFile = "olist_order_payments_dataset.csv"
	}
	if cfg.Bundle.ProductsFile == "" {
		cfg.Bundle.ProductsFile = "olist_products_dataset.csv"
	}
	if cfg.Bundle.OrdersFile == "" {
		cfg.Bundle.OrdersFile = "olist_orders_dataset.csv"
	}
	if cfg.Bundle.CustomersFile == "" {
		cfg.Bundle.CustomersFile = "olist_customers_dataset.csv"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "dicowi.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "dicowi"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Cache.Redis.Host == "" {
		cfg.Cache.Redis.Host = "localhost"
	}
	if cfg.Cache.Redis.Port == 0 {
		cfg.Cache.Redis.Port = 6379
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}

	if cfg.Dashboard.TopN == 0 {
		cfg.Dashboard.TopN = 10
	}
	if cfg.Dashboard.GeoTopN == 0 {
		cfg.Dashboard.GeoTopN = 10
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Bundle.Source {
	case SourceCSV, SourceDatabase, SourceS3:
	default:
		return fmt.Errorf("bundle.source must be one of csv, database, s3, got %q", c.Bundle.Source)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}

	if c.Bundle.Source == SourceS3 && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when bundle.source is s3")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Dashboard.TopN < 0 {
		return fmt.Errorf("dashboard.top_n must be positive")
	}
	if c.Dashboard.GeoTopN < 0 {
		return fmt.Errorf("dashboard.geo_top_n must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Bundle.Source == SourceDatabase && c.Database.Driver == DriverPostgres && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
