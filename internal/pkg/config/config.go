package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=4000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	CORS      CORSConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Assets    AssetConfig
	Notify    NotifyConfig
	Telemetry TelemetryConfig

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
}

type AuthConfig struct {
	JWTSecret        string `env:"JWT_SECRET_KEY, required"`
	JWTExpireDays    int    `env:"JWT_EXPIRE_DAYS,    default=7"`
	CookieExpireDays int    `env:"COOKIE_EXPIRE_DAYS, default=7"`
}

type CORSConfig struct {
	FrontendURL  string `env:"FRONTEND_URL,  default=http://localhost:5173"`
	DashboardURL string `env:"DASHBOARD_URL, default=http://localhost:5174"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hospital_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type AssetConfig struct {
	CloudinaryURL  string `env:"CLOUDINARY_URL"`
	Folder         string `env:"CLOUDINARY_FOLDER, default=doctors"`
	MaxAvatarBytes int64  `env:"MAX_AVATAR_BYTES,  default=5242880"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME, default=hospital-system"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// AllowedOrigins lists the browser origins allowed to send credentials.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range []string{c.CORS.FrontendURL, c.CORS.DashboardURL} {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads a .env file when one exists, then fills the configuration from
// the environment. Variables already set in the environment win over .env.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for program start-up. It panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}
