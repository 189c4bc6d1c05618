package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Auth         AuthConfig         `yaml:"auth"`
	Presence     PresenceConfig     `yaml:"presence"`
	Notification NotificationConfig `yaml:"notification"`
	Internal     InternalConfig     `yaml:"internal"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	ServiceURL string `yaml:"service_url"`
	SecretKey  string `yaml:"secret_key"`
}

type PresenceConfig struct {
	SweepIntervalSeconds  int    `yaml:"sweep_interval_seconds"`
	StaleThresholdSeconds int    `yaml:"stale_threshold_seconds"`
	GuardMode             string `yaml:"guard_mode"`
}

type NotificationConfig struct {
	DeadlineSchedule            string `yaml:"deadline_schedule"`
	DeadlineLookaheadHours      int    `yaml:"deadline_lookahead_hours"`
	DeadlineInitialDelaySeconds int    `yaml:"deadline_initial_delay_seconds"`
	UnreadCacheTTLSeconds       int    `yaml:"unread_cache_ttl_seconds"`
	RetentionDays               int    `yaml:"retention_days"`
}

type InternalConfig struct {
	APIKey string `yaml:"api_key"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     8004,
			BasePath: "/api/realtime",
			Env:      "dev",
			LogLevel: "debug",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
			DB:   0,
		},
		Presence: PresenceConfig{
			SweepIntervalSeconds:  30,
			StaleThresholdSeconds: 90,
			GuardMode:             "warn",
		},
		Notification: NotificationConfig{
			DeadlineSchedule:            "@every 6h0m0s",
			DeadlineLookaheadHours:      24,
			DeadlineInitialDelaySeconds: 60,
			UnreadCacheTTLSeconds:       300,
			RetentionDays:               90,
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if env := os.Getenv("NODE_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		cfg.Auth.ServiceURL = authURL
	}
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if guardMode := os.Getenv("TENANCY_GUARD_MODE"); guardMode != "" {
		cfg.Presence.GuardMode = guardMode
	}
	if apiKey := os.Getenv("INTERNAL_API_KEY"); apiKey != "" {
		cfg.Internal.APIKey = apiKey
	}

	return cfg, nil
}
