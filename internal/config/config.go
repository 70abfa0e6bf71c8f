package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config represents an application configuration.
	Config struct {
		// The data source name (DSN) for connecting to the database.
		DSN string `yaml:"dsn" env:"DATABASE_URI"`
		// Allowed CORS origins.
		CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:8080"`
		// Subconfigs.
		HTTPServer    HTTPServer    `yaml:"http_server"`
		JWT           JWT           `yaml:"jwt"`
		Logger        Logger        `yaml:"logger"`
		Collaborators Collaborators `yaml:"collaborators"`
		Uploads       Uploads       `yaml:"uploads"`
	}
	// Config for HTTP server.
	HTTPServer struct {
		// The server startup address.
		Address string `yaml:"run_address" env:"RUN_ADDRESS" env-default:"127.0.0.1:8080"`
		// Read Header Timeout in seconds.
		Timeout time.Duration `yaml:"timeout" env-default:"5s"`
		// Idle timeout in seconds.
		IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
		// Shutdown timeout in seconds.
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	}
	// Config for application's logger.
	Logger struct {
		// Path to store log files.
		Path string `yaml:"path" env:"LOG_PATH"`
		// Application logging level.
		Level string `yaml:"level" env:"LOG_LEVEL"`
		// Log files details.
		MaxSizeMB  int `yaml:"max_size_mb"`
		MaxBackups int `yaml:"max_backups"`
		MaxAgeDays int `yaml:"max_age_days"`
	}
	// Config for JWT.
	JWT struct {
		// JWT signing key.
		SigningKey string `yaml:"signing_key" env:"JWT_SIGNING_KEY"`
		// JWT expiration in hours.
		Expiration time.Duration `yaml:"expiration" env:"JWT_EXPIRATION" env-default:"24h"`
	}
	// Addresses of the external collaborator services.
	Collaborators struct {
		// Base URL of the notification delivery service.
		NotifyAddr string `yaml:"notify_addr" env:"NOTIFY_SERVICE_ADDRESS"`
		// Base URL of the chat service.
		ChatAddr string `yaml:"chat_addr" env:"CHAT_SERVICE_ADDRESS"`
		// Base URL of the pricing service.
		PricingAddr string `yaml:"pricing_addr" env:"PRICING_SERVICE_ADDRESS"`
		// Per request timeout for outbound calls.
		Timeout time.Duration `yaml:"timeout" env-default:"10s"`
		// Minimum interval between outbound notifications.
		NotifyInterval time.Duration `yaml:"notify_interval" env-default:"100ms"`
		// Notification burst size.
		NotifyBurst int `yaml:"notify_burst" env-default:"10"`
	}
	// Config for attachment storage.
	Uploads struct {
		// Root directory for order attachments.
		OrdersDir string `yaml:"orders_dir" env:"ORDERS_FOLDER" env-default:"uploads/orders"`
	}
)

// MustLoad returns an application configuration which is populated
// from the given configuration file, environment variables and flags.
func MustLoad() *Config {
	// Configuration yaml file path.
	configPath := flag.String("config", "./config/local.yml", "path to the config file")

	var cfg Config

	// Load from YAML cfg file if it exists.
	if _, err := os.Stat(*configPath); err == nil {
		file, err := os.Open(*configPath)
		if err != nil {
			log.Fatalf("failed to open config file: %s", *configPath)
		}
		if err = cleanenv.ParseYAML(file, &cfg); err != nil {
			log.Fatalf("failed to parse config file: %s", *configPath)
		}
	}

	// Read given flags.
	flag.StringVar(&cfg.HTTPServer.Address, "a", cfg.HTTPServer.Address, "server startup address")
	flag.StringVar(&cfg.DSN, "d", cfg.DSN, "server data source name")
	flag.Parse()

	// Read environment variables.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read environment variables: %v", err)
	}

	return &cfg
}
