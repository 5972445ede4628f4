package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Переменные окружения с обязательными параметрами.
const (
	envDatabaseDSN = "DATABASE_DSN"
	envJWTSecret   = "JWT_SECRET" //nolint:gosec // Ложное срабатывание, это имя переменной окружения
)

// config хранит конфигурацию сервера.
type config struct {
	Addr        string        `env:"SERVER_ADDR" env-default:":8090"`
	Env         string        `env:"APP_ENV" env-default:"local"`
	LogLevel    string        `env:"LOG_LEVEL" env-default:"info"`
	DatabaseDSN string        `env:"DATABASE_DSN"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" env-default:"60m"`
	BcryptCost  int           `env:"BCRYPT_COST" env-default:"10"`
	HTTP        httpConfig
	Minio       minioConfig
}

type httpConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// minioConfig - бакет со статикой. Пустой Endpoint означает встроенную статику.
type minioConfig struct {
	Endpoint string `env:"MINIO_ENDPOINT"`
	User     string `env:"MINIO_USER" env-default:"minioadmin"`
	Password string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Bucket   string `env:"MINIO_BUCKET" env-default:"gophtodo-static"`
	UseSSL   bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

// parseFlags читает переменные окружения, затем применяет флаги командной строки поверх них.
func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Адрес HTTP-сервера (env: SERVER_ADDR)")
	fs.StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN,
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret,
		fmt.Sprintf("Секрет подписи токенов (env: %s)", envJWTSecret))
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Окружение: local, dev, prod (env: APP_ENV)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Проверяем обязательные параметры
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан секрет подписи токенов (--jwt-secret или " + envJWTSecret + ")")
	}

	return cfg, nil
}
