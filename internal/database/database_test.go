package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/goartstore/catalog-module/internal/config"
)

// setupTestDB запускает PostgreSQL в Docker-контейнере через testcontainers
// и возвращает конфигурацию для подключения к нему.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("catalog_test"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("CM_DB_HOST", host)
	t.Setenv("CM_DB_PORT", port.Port())
	t.Setenv("CM_DB_NAME", "catalog_test")
	t.Setenv("CM_DB_USER", "catalog")
	t.Setenv("CM_DB_PASSWORD", "test-password")
	t.Setenv("CM_DB_SSL_MODE", "disable")
	t.Setenv("CM_SECRET_KEY", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestMigrate проверяет применение миграций и создание таблиц коллекций.
func TestMigrate(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	// Повторное применение: без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"agents", "consultants", "components", "documents", "reviews", "files"} {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}
}

// TestReadinessChecker_Postgres проверяет готовность на живой БД.
func TestReadinessChecker_Postgres(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	pg, err := Open(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer pg.Close()

	status, msg := pg.Checker.CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady() status = %q, message = %q; ожидали ok", status, msg)
	}
	if err := pg.SQLDB().PingContext(ctx); err != nil {
		t.Errorf("SQLDB().PingContext() ошибка: %v", err)
	}
}

// stubQuerier: подмена пула для проверки статусов без БД.
type stubQuerier struct {
	pingErr error
	row     stubRow
}

func (q stubQuerier) Ping(context.Context) error { return q.pingErr }

func (q stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return q.row }

// stubRow: строка schema_migrations.
type stubRow struct {
	version int64
	dirty   bool
	err     error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.version
	*dest[1].(*bool) = r.dirty
	return nil
}

func TestReadinessChecker_Statuses(t *testing.T) {
	current := int64(SchemaVersion())

	tests := []struct {
		name       string
		db         stubQuerier
		wantStatus string
	}{
		{"доступна, схема актуальна", stubQuerier{row: stubRow{version: current}}, "ok"},
		{"недоступна", stubQuerier{pingErr: errors.New("connection refused")}, "fail"},
		{"нет таблицы миграций", stubQuerier{row: stubRow{err: errors.New("relation does not exist")}}, "fail"},
		{"dirty", stubQuerier{row: stubRow{version: current, dirty: true}}, "fail"},
		{"схема отстаёт", stubQuerier{row: stubRow{version: current - 1}}, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := NewReadinessChecker(tt.db).CheckReady()
			if status != tt.wantStatus {
				t.Errorf("status = %q (%s), ожидается %q", status, msg, tt.wantStatus)
			}
		})
	}
}

func TestSchemaVersion(t *testing.T) {
	if v := SchemaVersion(); v != 1 {
		t.Errorf("SchemaVersion() = %d, ожидается 1", v)
	}

	fsys := fstest.MapFS{
		"m/000001_init.up.sql":    {},
		"m/000001_init.down.sql":  {},
		"m/000003_index.up.sql":   {},
		"m/000002_columns.up.sql": {},
		"m/README.md":             {},
		"m/bad_name.up.sql":       {},
		"m/000009_only.down.sql":  {},
	}
	if v := latestVersion(fsys, "m"); v != 3 {
		t.Errorf("latestVersion() = %d, ожидается 3", v)
	}
	if v := latestVersion(fsys, "missing"); v != 0 {
		t.Errorf("latestVersion() для отсутствующей директории = %d, ожидается 0", v)
	}
}

func TestOpen_RejectsMemoryBackend(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.BackendMemory}
	if _, err := Open(context.Background(), cfg, testLogger()); err == nil {
		t.Error("Open() для memory должен вернуть ошибку")
	}
}
