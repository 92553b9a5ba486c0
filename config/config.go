package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Kafka        KafkaConfig
	Notification NotificationConfig
	Pricing      PricingConfig
	Log          LogConfig
}

type AppConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// KafkaConfig is optional: with no brokers the status-change publisher is a no-op.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type NotificationConfig struct {
	ListLimit int
	Shards    int
	QueueSize int
}

type PricingConfig struct {
	CacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig reads settings from the given env file (if it exists) and the process
// environment. Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	cacheTTL, err := time.ParseDuration(v.GetString("PRICING_CACHE_TTL"))
	if err != nil {
		cacheTTL = 10 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Notification: NotificationConfig{
			ListLimit: v.GetInt("NOTIFICATION_LIST_LIMIT"),
			Shards:    v.GetInt("NOTIFICATION_SHARDS"),
			QueueSize: v.GetInt("NOTIFICATION_QUEUE_SIZE"),
		},
		Pricing: PricingConfig{
			CacheTTL: cacheTTL,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Jerusalem")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("KAFKA_TOPIC", "service-request-events")
	v.SetDefault("NOTIFICATION_LIST_LIMIT", 50)
	v.SetDefault("NOTIFICATION_SHARDS", 4)
	v.SetDefault("NOTIFICATION_QUEUE_SIZE", 256)
	v.SetDefault("LOG_LEVEL", "info")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
