package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// documentColumns: столбцы таблиц коллекций для SELECT-запросов.
const documentColumns = `id, data, date_created, date_modified`

// postgresBackend: коллекции в таблицах PostgreSQL (id, data JSONB, даты).
type postgresBackend struct {
	db DBTX
}

// NewPostgresBackend создаёт бэкенд коллекций поверх pgx.
// Имя коллекции: имя таблицы; таблицы создаются миграциями.
func NewPostgresBackend(db DBTX) Backend {
	return &postgresBackend{db: db}
}

// Collection возвращает коллекцию-таблицу. Имя берётся только из констант пакета.
func (b *postgresBackend) Collection(name string) Collection {
	return &pgCollection{db: b.db, table: name}
}

// pgCollection: реализация Collection через pgx, чистый SQL.
type pgCollection struct {
	db    DBTX
	table string
}

func (c *pgCollection) Name() string { return c.table }

// Insert добавляет документ.
func (c *pgCollection) Insert(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации документа: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES ($1, $2::jsonb, $3, $4)`,
		c.table, documentColumns,
	)
	if _, err := c.db.Exec(ctx, query, doc.ID, string(data), doc.DateCreated, doc.DateModified); err != nil {
		return fmt.Errorf("ошибка вставки документа: %w", err)
	}
	return nil
}

// Find выбирает документы по фильтру, курсору и сортировке.
func (c *pgCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	where, args, err := buildWhere(q.Filter, q.After, 1)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s %s`, documentColumns, c.table, where, buildOrderBy(q.Sort))
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, q.Limit)
	}

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки документов: %w", err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.DateCreated, &doc.DateModified); err != nil {
			return nil, fmt.Errorf("ошибка сканирования документа: %w", err)
		}
		if doc.Data, err = decodeJSONMap(raw); err != nil {
			return nil, err
		}
		doc.DateCreated = doc.DateCreated.UTC()
		doc.DateModified = doc.DateModified.UTC()
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// Count возвращает количество документов по фильтру.
func (c *pgCollection) Count(ctx context.Context, f Filter) (int, error) {
	where, args, err := buildWhere(f, nil, 1)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, c.table, where)

	var total int
	if err := c.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта документов: %w", err)
	}
	return total, nil
}

// UpdateOne применяет мутацию к первой по id подходящей записи.
// Set: слияние JSONB (||), Inc: jsonb_set с приращением числового значения.
func (c *pgCollection) UpdateOne(ctx context.Context, f Filter, m Mutation, modified time.Time) (bool, error) {
	args := []any{modified}
	expr := "data"

	if len(m.Set) > 0 {
		patch, err := json.Marshal(m.Set)
		if err != nil {
			return false, fmt.Errorf("ошибка сериализации обновления: %w", err)
		}
		args = append(args, string(patch))
		expr = fmt.Sprintf("(%s || $%d::jsonb)", expr, len(args))
	}

	for _, key := range sortedKeys(m.Inc) {
		args = append(args, strings.Split(key, "."), m.Inc[key])
		pathArg, valArg := len(args)-1, len(args)
		expr = fmt.Sprintf(
			"jsonb_set(%s, $%d::text[], to_jsonb(COALESCE((data #>> $%d::text[])::numeric, 0) + $%d::bigint), true)",
			expr, pathArg, pathArg, valArg,
		)
	}

	where, whereArgs, err := buildWhere(f, nil, len(args)+1)
	if err != nil {
		return false, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf(
		`UPDATE %[1]s SET data = %[2]s, date_modified = $1
		WHERE id = (SELECT id FROM %[1]s %[3]s ORDER BY id LIMIT 1)`,
		c.table, expr, where,
	)

	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления документа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOne удаляет первую по id подходящую запись.
func (c *pgCollection) DeleteOne(ctx context.Context, f Filter) (bool, error) {
	where, args, err := buildWhere(f, nil, 1)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(
		`DELETE FROM %[1]s WHERE id = (SELECT id FROM %[1]s %[2]s ORDER BY id LIMIT 1)`,
		c.table, where,
	)
	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления документа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// buildWhere строит WHERE-условие по фильтру и курсору.
// startArg: номер первого $-параметра (для корректной нумерации).
func buildWhere(f Filter, after *uuid.UUID, startArg int) (whereClause string, args []any, err error) {
	var conditions []string
	argNum := startArg

	for _, key := range sortedKeys(f) {
		val := f[key]
		if key == IDField {
			id, err := normalizeID(val)
			if err != nil {
				return "", nil, err
			}
			conditions = append(conditions, fmt.Sprintf("id = $%d", argNum))
			args = append(args, id)
			argNum++
			continue
		}

		// Ключ подставляется литералом, чтобы совпасть с индексами (data -> 'owner_id').
		if !validFieldName(key) {
			return "", nil, fmt.Errorf("недопустимое имя поля фильтра %q", key)
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return "", nil, fmt.Errorf("ошибка сериализации фильтра %q: %w", key, err)
		}
		conditions = append(conditions, fmt.Sprintf("data -> '%s' = $%d::jsonb", key, argNum))
		args = append(args, string(raw))
		argNum++
	}

	if after != nil {
		conditions = append(conditions, fmt.Sprintf("id > $%d", argNum))
		args = append(args, *after)
	}

	if len(conditions) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

// buildOrderBy строит ORDER BY по whitelist полей; id: вторичный ключ.
func buildOrderBy(s Sort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	field := validSortField(s.Field)
	if field == SortByID {
		return "ORDER BY id " + dir
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", field, dir, dir)
}

// validFieldName: имя поля из строчных латинских букв, цифр и '_'.
func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// sortedKeys возвращает ключи карты в лексикографическом порядке.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
