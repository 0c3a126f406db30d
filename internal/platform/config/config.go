package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIPort   string        `env:"API_PORT" envDefault:"8080"`
	JWTSecret string        `env:"JWT_SECRET" envDefault:"defaultsecret"`
	JWTExp    time.Duration `env:"JWT_EXPIRATION" envDefault:"72h"`
	JWTKey    []byte

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DBName     string `env:"DB_NAME" envDefault:"hackboard_db"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBConnStr  string

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	NotificationQueueName string `env:"NOTIFICATION_QUEUE_NAME" envDefault:"notification_jobs_queue"`
	NotifyWebhookURL      string `env:"NOTIFY_WEBHOOK_URL"`

	LockPrefix string        `env:"LOCK_PREFIX" envDefault:"application_lock:"`
	LockTTL    time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	LockWait   time.Duration `env:"LOCK_WAIT" envDefault:"5s"`

	RankingWebhookSecret string   `env:"RANKING_WEBHOOK_SECRET"`
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Error parsing configuration: %v", err)
	}
	AppConfig = cfg
}

// Parse reads the process environment into a Config and fills the derived fields.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.Parse: %w", err)
	}

	cfg.JWTKey = []byte(cfg.JWTSecret)
	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg, nil
}
