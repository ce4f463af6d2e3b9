// Package config loads service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendMongoDB  = "mongodb"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production test"`
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Store configuration
	StoreBackend     string `yaml:"store_backend" validate:"oneof=memory mongodb dynamodb"`
	MongoDBURI       string `yaml:"mongodb_uri" validate:"required_if=StoreBackend mongodb"`
	MongoDBDatabase  string `yaml:"mongodb_database" validate:"required_if=StoreBackend mongodb"`
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table" validate:"required_if=StoreBackend dynamodb"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	SeedFile         string `yaml:"seed_file"`

	// Authentication
	JWTSecret   string   `yaml:"jwt_secret"`
	JWTIssuer   string   `yaml:"jwt_issuer"`
	JWTAudience []string `yaml:"jwt_audience"`

	// Feature flags
	EnableMetrics        bool   `yaml:"enable_metrics"`
	EnableTracing        bool   `yaml:"enable_tracing"`
	EnableCircuitBreaker bool   `yaml:"enable_circuit_breaker"`
	OTLPEndpoint         string `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// File the dynamic section is reloaded from. Empty disables reloading.
	ConfigFile string `yaml:"-"`

	Dynamic Dynamic `yaml:"dynamic"`
}

// Dynamic is the part of the configuration that may change at runtime.
type Dynamic struct {
	Pagination Pagination          `yaml:"pagination"`
	Roles      map[string][]string `yaml:"roles"`
}

// Pagination bounds listing page sizes.
type Pagination struct {
	DefaultPerPage int `yaml:"default_per_page" validate:"min=1"`
	MaxPerPage     int `yaml:"max_per_page" validate:"min=1,gtefield=DefaultPerPage"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		LogLevel:           "info",
		StoreBackend:       BackendMemory,
		MongoDBDatabase:    "erxes",
		AWSRegion:          "us-west-2",
		DynamoDBTable:      "forums",
		JWTIssuer:          "forum-api",
		EnableMetrics:      true,
		CORSAllowedOrigins: []string{"*"},
		Dynamic: Dynamic{
			Pagination: Pagination{DefaultPerPage: 20, MaxPerPage: 100},
			Roles: map[string][]string{
				"admin":  {"showForums"},
				"member": {"showForums"},
			},
		},
	}
}

// LoadConfig builds the configuration from defaults, CONFIG_FILE and the
// environment, then validates it.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.MongoDBURI = getEnv("MONGODB_URI", cfg.MongoDBURI)
	cfg.MongoDBDatabase = getEnv("MONGODB_DATABASE", cfg.MongoDBDatabase)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.DynamoDBTable))
	cfg.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", cfg.DynamoDBEndpoint)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = getEnvList("JWT_AUDIENCE", cfg.JWTAudience)

	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", cfg.EnableCircuitBreaker)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)

	applyDynamicEnv(&cfg.Dynamic)
}

// applyDynamicEnv is also run on every reload so the environment keeps
// precedence over the file.
func applyDynamicEnv(d *Dynamic) {
	d.Pagination.DefaultPerPage = getEnvInt("DEFAULT_PER_PAGE", d.Pagination.DefaultPerPage)
	d.Pagination.MaxPerPage = getEnvInt("MAX_PER_PAGE", d.Pagination.MaxPerPage)
}

var validate = validator.New()

// Validate checks struct rules and production requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// ValidateDynamic checks a reloaded dynamic section.
func ValidateDynamic(d Dynamic) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid dynamic configuration: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
