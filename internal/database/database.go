// Пакет database: PostgreSQL-хранилище записей каталога.
// Open применяет миграции коллекций, создаёт пул pgxpool и проверку готовности,
// которая учитывает версию схемы, а не только доступность сервера.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/goartstore/catalog-module/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres: подготовленное хранилище записей.
type Postgres struct {
	Pool    *pgxpool.Pool
	Checker *ReadinessChecker

	sqlDB *sql.DB
}

// Open применяет миграции и подключается к PostgreSQL.
// Вызывающий код обязан вызвать Close.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Postgres, error) {
	if cfg.StorageBackend != config.BackendPostgres {
		return nil, fmt.Errorf("хранилище записей %q не использует PostgreSQL", cfg.StorageBackend)
	}
	if err := Migrate(cfg, logger); err != nil {
		return nil, err
	}
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool, Checker: NewReadinessChecker(pool)}, nil
}

// SQLDB возвращает *sql.DB поверх того же пула (для topologymetrics).
func (p *Postgres) SQLDB() *sql.DB {
	if p.sqlDB == nil {
		p.sqlDB = stdlib.OpenDBFromPool(p.Pool)
	}
	return p.sqlDB
}

// Close закрывает *sql.DB и пул.
func (p *Postgres) Close() {
	if p.sqlDB != nil {
		_ = p.sqlDB.Close()
	}
	p.Pool.Close()
}

// Connect создаёт пул подключений к PostgreSQL и проверяет доступность.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
	)
	return pool, nil
}

// Migrate применяет SQL-миграции коллекций каталога из embedded FS.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.DatabaseURL("pgx5"))
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Схема коллекций актуальна",
		slog.Uint64("version", uint64(version)),
		slog.Uint64("expected", uint64(SchemaVersion())),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// SchemaVersion возвращает номер последней встроенной миграции.
func SchemaVersion() uint {
	return latestVersion(migrationsFS, "migrations")
}

// latestVersion ищет максимальный префикс NNNNNN_ среди *.up.sql.
func latestVersion(fsys fs.FS, dir string) uint {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0
	}
	var latest uint
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err == nil && uint(v) > latest {
			latest = uint(v)
		}
	}
	return latest
}

// Querier: пул или его подмена в тестах.
type Querier interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReadinessChecker: готовность хранилища записей для /health/ready.
// Кроме ping проверяет, что схема не dirty и не отстаёт от встроенных миграций.
type ReadinessChecker struct {
	db       Querier
	expected uint
	timeout  time.Duration
}

// NewReadinessChecker создаёт проверку готовности PostgreSQL.
func NewReadinessChecker(db Querier) *ReadinessChecker {
	return &ReadinessChecker{db: db, expected: SchemaVersion(), timeout: 3 * time.Second}
}

// CheckReady возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.db.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}

	var (
		version int64
		dirty   bool
	)
	err := c.db.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		return "fail", fmt.Sprintf("версия схемы недоступна: %v", err)
	}
	if dirty {
		return "fail", fmt.Sprintf("миграция %d не завершена (dirty)", version)
	}
	if version < int64(c.expected) {
		return "fail", fmt.Sprintf("схема v%d отстаёт от ожидаемой v%d", version, c.expected)
	}
	return "ok", fmt.Sprintf("подключение активно, схема v%d", version)
}
