// Пакет config: загрузка и валидация конфигурации Catalog Module
// из переменных окружения (с необязательным .env файлом).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые бэкенды хранения записей.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config содержит все параметры конфигурации Catalog Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Префикс API-маршрутов (по умолчанию /api/v1)
	APIPrefix string
	// Разрешённые CORS origins
	AllowedOrigins []string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- Хранилище ---

	// StorageBackend: postgres или memory
	StorageBackend string
	DBHost         string
	DBPort         int
	DBName         string
	DBUser         string
	DBPassword     string
	DBSSLMode      string
	// DataDir: директория бинарных данных файлов
	DataDir string
	// MaxUploadMemory: буфер multipart в памяти (байт)
	MaxUploadMemory int64

	// --- Токены доступа к файлам ---

	SecretKey      string
	TokenAlgorithm string
	FileTokenTTL   time.Duration

	// --- Пагинация ---

	PageDefaultLimit int
	PageMaxLimit     int

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Если в рабочей директории есть .env: переменные из него подгружаются
// (уже заданные в окружении не перезаписываются).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// CM_PORT: порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("CM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("CM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("CM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("CM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CM_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("CM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("CM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// CM_API_PREFIX: без trailing slash
	cfg.APIPrefix = strings.TrimRight(getEnvDefault("CM_API_PREFIX", "/api/v1"), "/")
	if cfg.APIPrefix != "" && !strings.HasPrefix(cfg.APIPrefix, "/") {
		return nil, fmt.Errorf("CM_API_PREFIX: значение %q должно начинаться с /", cfg.APIPrefix)
	}

	cfg.AllowedOrigins = parseCSV(getEnvDefault("CM_ALLOWED_ORIGINS", "*"))

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("CM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CM_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("CM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("CM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CM_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("CM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CM_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Хранилище ---

	cfg.StorageBackend = getEnvDefault("CM_STORAGE_BACKEND", BackendPostgres)
	switch cfg.StorageBackend {
	case BackendPostgres:
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	case BackendMemory:
		// PostgreSQL не нужен
	default:
		return nil, fmt.Errorf("CM_STORAGE_BACKEND: недопустимое значение %q, допустимые: postgres, memory", cfg.StorageBackend)
	}

	cfg.DataDir = getEnvDefault("CM_DATA_DIR", "./data")

	maxUpload, err := getEnvInt("CM_MAX_UPLOAD_MEMORY", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("CM_MAX_UPLOAD_MEMORY: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("CM_MAX_UPLOAD_MEMORY: значение должно быть > 0")
	}
	cfg.MaxUploadMemory = int64(maxUpload)

	// --- Токены ---

	cfg.SecretKey, err = getEnvRequired("CM_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	cfg.TokenAlgorithm = strings.ToUpper(getEnvDefault("CM_TOKEN_ALGORITHM", "HS256"))
	switch cfg.TokenAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("CM_TOKEN_ALGORITHM: недопустимое значение %q, допустимые: HS256, HS384, HS512", cfg.TokenAlgorithm)
	}

	cfg.FileTokenTTL, err = getEnvDurationFallback("CM_FILE_TOKEN_TTL", 48*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("CM_FILE_TOKEN_TTL: %w", err)
	}

	// --- Пагинация ---

	cfg.PageDefaultLimit, err = getEnvInt("CM_PAGE_DEFAULT_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("CM_PAGE_DEFAULT_LIMIT: %w", err)
	}
	cfg.PageMaxLimit, err = getEnvInt("CM_PAGE_MAX_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("CM_PAGE_MAX_LIMIT: %w", err)
	}
	if cfg.PageDefaultLimit < 1 || cfg.PageMaxLimit < cfg.PageDefaultLimit {
		return nil, fmt.Errorf("CM_PAGE_DEFAULT_LIMIT/CM_PAGE_MAX_LIMIT: требуется 1 <= default (%d) <= max (%d)",
			cfg.PageDefaultLimit, cfg.PageMaxLimit)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("CM_DEPHEALTH_GROUP", "catalog")
	cfg.DephealthCheckInterval, err = getEnvDurationFallback("CM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// loadDatabase читает параметры PostgreSQL (обязательны для backend=postgres).
func loadDatabase(cfg *Config) error {
	var err error

	cfg.DBHost, err = getEnvRequired("CM_DB_HOST")
	if err != nil {
		return err
	}
	cfg.DBPort, err = getEnvInt("CM_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("CM_DB_PORT: %w", err)
	}
	cfg.DBName, err = getEnvRequired("CM_DB_NAME")
	if err != nil {
		return err
	}
	cfg.DBUser, err = getEnvRequired("CM_DB_USER")
	if err != nil {
		return err
	}
	cfg.DBPassword, err = getEnvRequired("CM_DB_PASSWORD")
	if err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("CM_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("CM_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL (для golang-migrate и лейблов topologymetrics).
func (c *Config) DatabaseURL(scheme string) string {
	return fmt.Sprintf(
		"%s://%s:%s@%s:%d/%s?sslmode=%s",
		scheme, c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationFallback: как getEnvDuration, но дополнительно требует значение > 0.
func getEnvDurationFallback(key string, fallbackVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, fallbackVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку через запятую, отбрасывая пустые элементы.
func parseCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}
