package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // TIMEZONE работает и в образах без системной базы зон

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	TelegramToken string
	DBDriver      string
	DBDSN         string
	Environment   string
	LogLevel      string
	Timezone      *time.Location

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRPS   float64
	RateLimitBurst int

	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration
	AutoMigrate       bool
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err == nil {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv собирает конфигурацию из произвольного источника переменных
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := &Config{
		TelegramToken: env.str("TELEGRAM_TOKEN", ""),
		DBDriver:      env.str("DB_DRIVER", DriverPostgres),
		DBDSN:         env.str("DB_DSN", ""),
		Environment:   env.str("ENV", "development"),
		LogLevel:      env.str("LOG_LEVEL", ""),
		RedisAddr:     env.str("REDIS_ADDR", ""),
		RedisPassword: env.str("REDIS_PASSWORD", ""),
	}

	cfg.Timezone = env.location("TIMEZONE", time.UTC)
	cfg.RedisDB = env.integer("REDIS_DB", 0)
	cfg.RateLimitRPS = env.float("RATE_LIMIT_RPS", 2)
	cfg.RateLimitBurst = env.integer("RATE_LIMIT_BURST", 5)
	cfg.ReconcileInterval = env.duration("RECONCILE_INTERVAL", 10*time.Minute)
	cfg.ReconcileGrace = env.duration("RECONCILE_GRACE", 2*time.Minute)
	cfg.AutoMigrate = env.boolean("AUTO_MIGRATE", true)

	if env.err != nil {
		return nil, env.err
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for driver %q", cfg.DBDriver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("DB_DRIVER: unknown driver %q", cfg.DBDriver)
	}

	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.ReconcileInterval < 0 || cfg.ReconcileGrace < 0 {
		return nil, fmt.Errorf("RECONCILE_INTERVAL and RECONCILE_GRACE must not be negative")
	}
	// без grace сверка снимает блокировки запросов, которые ещё создаются
	if cfg.ReconcileInterval > 0 && cfg.ReconcileGrace == 0 {
		return nil, fmt.Errorf("RECONCILE_GRACE must be positive when RECONCILE_INTERVAL is set")
	}

	return cfg, nil
}

// RequireToken проверяет наличие токена бота (нужен только для serve)
func (c *Config) RequireToken() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	return nil
}

// envReader запоминает первую ошибку разбора, чтобы Load сообщил имя переменной
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e *envReader) parse(key string, parse func(string) error) {
	v, ok := e.lookup(key)
	if !ok || v == "" || e.err != nil {
		return
	}
	if err := parse(v); err != nil {
		e.err = fmt.Errorf("%s: invalid value %q: %w", key, v, err)
	}
}

func (e *envReader) integer(key string, def int) int {
	out := def
	e.parse(key, func(v string) (err error) {
		out, err = strconv.Atoi(v)
		return err
	})
	return out
}

func (e *envReader) float(key string, def float64) float64 {
	out := def
	e.parse(key, func(v string) (err error) {
		out, err = strconv.ParseFloat(v, 64)
		return err
	})
	return out
}

func (e *envReader) boolean(key string, def bool) bool {
	out := def
	e.parse(key, func(v string) (err error) {
		out, err = strconv.ParseBool(v)
		return err
	})
	return out
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	out := def
	e.parse(key, func(v string) (err error) {
		out, err = time.ParseDuration(v)
		return err
	})
	return out
}

func (e *envReader) location(key string, def *time.Location) *time.Location {
	out := def
	e.parse(key, func(v string) (err error) {
		out, err = time.LoadLocation(v)
		return err
	})
	return out
}
