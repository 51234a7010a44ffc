// Пакет repository: обобщённое хранилище записей каталога.
// Store[T] реализует CRUD и курсорную пагинацию поверх Collection :
// PostgreSQL (JSONB, чистый SQL через pgx) или in-memory.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound: запись не найдена (оборачивается с именем коллекции).
	ErrNotFound = errors.New("запись не найдена")
	// ErrForbiddenField: попытка изменить неизменяемое поле.
	ErrForbiddenField = errors.New("поле не может быть изменено")
	// ErrMalformedID: строка не является корректным идентификатором.
	ErrMalformedID = errors.New("некорректный идентификатор")
)

// DBTX: интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IDField: имя поля идентификатора в фильтрах.
const IDField = "id"

// Filter: условия равенства на поля верхнего уровня записи.
// Ключ IDField сравнивается с идентификатором записи.
type Filter map[string]any

// ByID: фильтр по идентификатору.
func ByID(id uuid.UUID) Filter {
	return Filter{IDField: id}
}

// Поля сортировки (whitelist).
const (
	SortByID           = "id"
	SortByDateCreated  = "date_created"
	SortByDateModified = "date_modified"
)

// Sort: порядок выборки. Пустой Field: по id.
type Sort struct {
	Field string
	Desc  bool
}

// Query: параметры выборки документов из коллекции.
type Query struct {
	Filter Filter
	// After: только записи с id > After (условие курсора)
	After *uuid.UUID
	// Limit: 0 означает без ограничения
	Limit int
	Sort  Sort
}

// Mutation: выражение обновления для AdvancedUpdate.
// Set: поверхностное присваивание полей верхнего уровня,
// Inc: приращение числовых полей по пути через точку ("rating.total_stars").
type Mutation struct {
	Set map[string]any
	Inc map[string]int64
}

// Document: запись коллекции в нормализованной форме.
// Data не содержит id и дат: они хранятся отдельно.
type Document struct {
	ID           uuid.UUID
	Data         map[string]any
	DateCreated  time.Time
	DateModified time.Time
}

// Collection: бэкенд хранения одной коллекции документов.
// UpdateOne и DeleteOne затрагивают первую по id подходящую запись.
type Collection interface {
	Name() string
	Insert(ctx context.Context, doc Document) error
	Find(ctx context.Context, q Query) ([]Document, error)
	Count(ctx context.Context, f Filter) (int, error)
	UpdateOne(ctx context.Context, f Filter, m Mutation, modified time.Time) (bool, error)
	DeleteOne(ctx context.Context, f Filter) (bool, error)
}

// Backend создаёт коллекции по имени.
type Backend interface {
	Collection(name string) Collection
}

// NewID генерирует новый идентификатор записи.
// UUIDv7 монотонно возрастает во времени: это и есть порядок курсоров.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// ParseID разбирает строковый идентификатор.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	return id, nil
}

// normalizeID приводит значение фильтра по id к uuid.UUID.
func normalizeID(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return ParseID(id)
	case fmt.Stringer:
		return ParseID(id.String())
	default:
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformedID, v)
	}
}

// validSortField проверяет поле сортировки по whitelist.
func validSortField(field string) string {
	switch field {
	case SortByDateCreated, SortByDateModified:
		return field
	default:
		return SortByID
	}
}
