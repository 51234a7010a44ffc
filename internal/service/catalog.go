// catalog.go: общие операции записей каталога с файлами:
// частичное обновление, обязательные файлы, замена файлов.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

// toPatch превращает структуру частичного обновления в набор полей.
// nil-указатели (omitempty) в набор не попадают. Указатель на nil-срез
// сериализуется как null и записывается пустым списком.
func toPatch(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("сериализация обновления: %w", err)
	}
	var patch map[string]any
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, fmt.Errorf("разбор обновления: %w", err)
	}
	for k, val := range patch {
		if val == nil {
			patch[k] = []any{}
		}
	}
	return patch, nil
}

// requireUploads проверяет наличие всех обязательных файлов.
func requireUploads(uploads map[string]Upload, categories ...string) error {
	for _, c := range categories {
		up, ok := uploads[c]
		if !ok || up.Content == nil {
			return validationError("отсутствует обязательный файл %s", c)
		}
	}
	return nil
}

// onlyCategories отбрасывает файлы неизвестных категорий.
func onlyCategories(uploads map[string]Upload, categories ...string) map[string]Upload {
	out := make(map[string]Upload, len(uploads))
	for _, c := range categories {
		if up, ok := uploads[c]; ok && up.Content != nil {
			out[c] = up
		}
	}
	return out
}

// replaceFiles заменяет файлы записи id по категориям.
// Порядок для каждой категории: сохранить новый → обновить ссылку в записи →
// удалить старый файл той же категории (best-effort).
func replaceFiles[T any](
	ctx context.Context,
	store *repository.Store[T],
	files *FileService,
	id uuid.UUID,
	current map[string]string,
	uploads map[string]Upload,
	logger *slog.Logger,
) error {
	for _, category := range sortedCategories(uploads) {
		newID, err := files.Put(ctx, uploads[category], id.String(), category)
		if err != nil {
			return err
		}

		if err := store.Update(ctx, repository.ByID(id), map[string]any{category: newID}); err != nil {
			files.Discard(ctx, newID)
			return err
		}

		logger.Info("Файл заменён",
			slog.String("record_id", id.String()),
			slog.String("category", category),
			slog.String("file_id", newID),
		)
		files.Discard(ctx, current[category])
	}
	return nil
}
