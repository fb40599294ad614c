package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Gateway   GatewayConfig
	SMS       SMSConfig
	Scheduler SchedulerConfig
	AI        AIConfig
	RabbitMQ  RabbitMQConfig
	Redis     RedisConfig
	Env       string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// GatewayConfig holds SMS gateway connection settings.
// SysID, SrcAddress, DrFlag and FirstFailFlag are fixed per deployment
// and shared across all batches.
type GatewayConfig struct {
	URL           string
	SysID         string
	SrcAddress    string
	DrFlag        bool
	FirstFailFlag bool
	Timeout       time.Duration
}

// SMSConfig holds message-level limits
type SMSConfig struct {
	BatchSize         int
	MaxLength         int
	MaxLengthExtended int
}

// SchedulerConfig holds the background poller settings
type SchedulerConfig struct {
	Interval time.Duration
}

// AIConfig holds content-generation provider settings
type AIConfig struct {
	Provider      string // "gemini" or "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// RabbitMQConfig holds RabbitMQ configuration.
// Dispatch event publishing is optional; leave RABBITMQ_HOST unset to disable.
type RabbitMQConfig struct {
	Enabled   bool
	Host      string
	Port      string
	User      string
	Password  string
	QueueName string
}

// RedisConfig holds the optional outcome cache settings.
// Leave REDIS_ADDR unset to disable.
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "sms_system"),
		},
		Gateway: GatewayConfig{
			URL:           getEnv("SMS_GATEWAY_URL", ""),
			SysID:         getEnv("SMS_SYS_ID", "ENT001"),
			SrcAddress:    getEnv("SMS_SRC_ADDRESS", ""),
			DrFlag:        getEnvAsBool("SMS_DR_FLAG", true),
			FirstFailFlag: getEnvAsBool("SMS_FIRST_FAIL_FLAG", false),
			Timeout:       time.Duration(getEnvAsInt("SMS_GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		SMS: SMSConfig{
			BatchSize:         getEnvAsInt("SMS_BATCH_SIZE", 20),
			MaxLength:         getEnvAsInt("SMS_MAX_LENGTH", 70),
			MaxLengthExtended: getEnvAsInt("SMS_MAX_LENGTH_EXTENDED", 140),
		},
		Scheduler: SchedulerConfig{
			Interval: time.Duration(getEnvAsInt("SCHEDULE_INTERVAL", 60)) * time.Second,
		},
		AI: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "gemini"),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_API_BASE", "https://openrouter.ai/api/v1"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "mistralai/mistral-small-3.1-24b-instruct:free"),
		},
		RabbitMQ: loadRabbitMQConfig(),
		Redis:    loadRedisConfig(),
		Env:      getEnv("ENV", "development"),
	}

	// Validate required fields
	if config.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Gateway.URL == "" {
		return nil, fmt.Errorf("SMS_GATEWAY_URL is required")
	}
	if config.SMS.BatchSize <= 0 {
		return nil, fmt.Errorf("SMS_BATCH_SIZE must be > 0")
	}
	if config.Scheduler.Interval <= 0 {
		return nil, fmt.Errorf("SCHEDULE_INTERVAL must be > 0")
	}
	if config.AI.Provider != "gemini" && config.AI.Provider != "openai" {
		return nil, fmt.Errorf("AI_PROVIDER must be 'gemini' or 'openai'")
	}

	return config, nil
}

func loadRabbitMQConfig() RabbitMQConfig {
	host := os.Getenv("RABBITMQ_HOST")
	if host == "" {
		return RabbitMQConfig{Enabled: false}
	}

	return RabbitMQConfig{
		Enabled:   true,
		Host:      host,
		Port:      getEnv("RABBITMQ_PORT", "5672"),
		User:      getEnv("RABBITMQ_DEFAULT_USER", "guest"),
		Password:  getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
		QueueName: getEnv("RABBITMQ_QUEUE", "dispatch_events"),
	}
}

func loadRedisConfig() RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
		TTL:      time.Duration(getEnvAsInt("REDIS_TTL_SECONDS", 86400)) * time.Second,
	}
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer or returns default
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets environment variable as boolean or returns default
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
