package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-this-secret-in-production"

// Config holds all API service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Auth     AuthConfig     `json:"auth"`
	Logging  LoggingConfig  `json:"logging"`
	CORS     CORSConfig     `json:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Mode         string        `json:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// Storage drivers
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// DatabaseConfig holds MongoDB configuration. The memory driver keeps
// everything in process and ignores the Mongo settings.
type DatabaseConfig struct {
	Driver         string        `json:"driver"`
	URI            string        `json:"uri"`
	Name           string        `json:"name"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	MaxPoolSize    uint64        `json:"max_pool_size"`
	MinPoolSize    uint64        `json:"min_pool_size"`
	UseTLS         bool          `json:"use_tls"`
}

// MQTTConfig holds the change notifier broker settings. An empty BrokerHost
// disables the notifier.
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	ClientID    string        `json:"client_id"`
	TopicPrefix string        `json:"topic_prefix"`
	QoS         byte          `json:"qos"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
}

// Enabled reports whether a broker is configured
func (m MQTTConfig) Enabled() bool {
	return m.BrokerHost != ""
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled              bool          `json:"enabled"`
	JWTSecretKey         string        `json:"jwt_secret_key"`
	JWTIssuer            string        `json:"jwt_issuer"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	RefreshTokenDuration time.Duration `json:"refresh_token_duration"`
	PasswordMinLength    int           `json:"password_min_length"`
	Admin                AdminConfig   `json:"admin"`
}

// AdminConfig holds the bootstrap admin user
type AdminConfig struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// SeedConfig controls how many documents the seeder creates per parent
type SeedConfig struct {
	Organizations          int   `json:"organizations"`
	SitesPerOrg            int   `json:"sites_per_org"`
	MeasuringPointsPerSite int   `json:"measuring_points_per_site"`
	BoardsPerPoint         int   `json:"boards_per_point"`
	SensorsPerBoard        int   `json:"sensors_per_board"`
	RandomSeed             int64 `json:"random_seed"`
	Clean                  bool  `json:"clean"`
}

// SeederConfig holds configuration for the seed command
type SeederConfig struct {
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Seed     SeedConfig     `json:"seed"`
}

func loadDotEnv() {
	// A missing .env is fine: variables may be set directly.
	_ = godotenv.Load()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Driver:         strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		URI:            getEnv("MONGODB_URI", ""),
		Name:           getEnv("DB_NAME", "iot"),
		ConnectTimeout: getDuration("MONGO_CONNECT_TIMEOUT", 20*time.Second),
		MaxPoolSize:    uint64(getInt("MONGO_MAX_POOL_SIZE", 25)),
		MinPoolSize:    uint64(getInt("MONGO_MIN_POOL_SIZE", 5)),
		UseTLS:         getBool("MONGO_TLS", false),
	}
}

func loadLogging() LoggingConfig {
	return LoggingConfig{
		Level:        getEnv("LOG_LEVEL", "info"),
		Format:       getEnv("LOG_FORMAT", "text"),
		Output:       getEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: getBool("LOG_ENABLE_CALLER", false),
	}
}

// LoadApiConfig loads configuration for the API service
func LoadApiConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8090"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: loadDatabase(),
		MQTT: MQTTConfig{
			BrokerHost:  getEnv("BROKER_HOST", ""),
			BrokerPort:  getInt("BROKER_PORT", 1883),
			BrokerUser:  getEnv("BROKER_USER", ""),
			BrokerPass:  getEnv("BROKER_PASS", ""),
			UseTLS:      getBool("BROKER_TLS", false),
			CACertPath:  getEnv("BROKER_CA_FILE", ""),
			ClientID:    getEnv("MQTT_CLIENT_ID", "asset-registry-api"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "assets"),
			QoS:         byte(getInt("MQTT_QOS", 1)),
			KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled:              getBool("AUTH_ENABLED", false),
			JWTSecretKey:         getEnv("JWT_SECRET_KEY", defaultJWTSecret),
			JWTIssuer:            getEnv("JWT_ISSUER", "iot-asset-registry"),
			AccessTokenDuration:  getDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: getDuration("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			PasswordMinLength:    getInt("PASSWORD_MIN_LENGTH", 8),
			Admin: AdminConfig{
				Username: getEnv("ADMIN_USERNAME", "admin"),
				Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
				Password: getEnv("ADMIN_PASSWORD", "adminpassword123"),
			},
		},
		Logging: loadLogging(),
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-Request-ID"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadSeederConfig loads configuration for the seed command
func LoadSeederConfig() (*SeederConfig, error) {
	loadDotEnv()

	config := &SeederConfig{
		Database: loadDatabase(),
		Logging:  loadLogging(),
		Seed: SeedConfig{
			Organizations:          getInt("SEED_ORGANIZATIONS", 5),
			SitesPerOrg:            getInt("SEED_SITES_PER_ORG", 3),
			MeasuringPointsPerSite: getInt("SEED_MEASURING_POINTS_PER_SITE", 4),
			BoardsPerPoint:         getInt("SEED_BOARDS_PER_POINT", 2),
			SensorsPerBoard:        getInt("SEED_SENSORS_PER_BOARD", 3),
			RandomSeed:             int64(getInt("SEED_RANDOM_SEED", 0)),
			Clean:                  getBool("SEED_CLEAN", true),
		},
	}

	if config.Database.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if config.Seed.Organizations < 0 || config.Seed.SitesPerOrg < 0 || config.Seed.MeasuringPointsPerSite < 0 ||
		config.Seed.BoardsPerPoint < 0 || config.Seed.SensorsPerBoard < 0 {
		return nil, fmt.Errorf("seed counts must not be negative")
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME must not be empty")
	}
	if c.Database.MinPoolSize > c.Database.MaxPoolSize {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE must not exceed MONGO_MAX_POOL_SIZE")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.Auth.Enabled {
		if c.Auth.JWTSecretKey == defaultJWTSecret {
			log.Println("WARNING: Using default JWT secret key. Change JWT_SECRET_KEY in production!")
		}
		if c.Auth.PasswordMinLength < 6 {
			return fmt.Errorf("password minimum length must be at least 6")
		}
		if len(c.Auth.Admin.Password) < c.Auth.PasswordMinLength {
			return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", c.Auth.PasswordMinLength)
		}
	}
	return nil
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *Config) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
