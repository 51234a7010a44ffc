// files.go: хранилище файлов каталога: запись File + содержимое на диске.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/storage/filestore"
)

var blobCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cm_blob_cleanup_failures_total",
	Help: "Количество неудачных удалений заменённых или осиротевших файлов.",
})

// Upload: загружаемый файл из multipart-формы.
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileService: файлы как записи коллекции files поверх filestore.
type FileService struct {
	files  *repository.Store[model.File]
	blobs  *filestore.FileStore
	logger *slog.Logger
}

// NewFileService создаёт сервис файлов.
func NewFileService(files *repository.Store[model.File], blobs *filestore.FileStore, logger *slog.Logger) *FileService {
	return &FileService{
		files:  files,
		blobs:  blobs,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// Put сохраняет содержимое и создаёт запись File. Возвращает id записи.
// Если запись создать не удалось, содержимое удаляется.
func (s *FileService) Put(ctx context.Context, up Upload, ownerID, category string) (string, error) {
	saved, err := s.blobs.Save(up.Content, up.Filename)
	if err != nil {
		return "", fmt.Errorf("сохранение файла %q: %w", up.Filename, err)
	}

	id, err := s.files.Create(ctx, &model.File{
		Filename:   up.Filename,
		OwnerID:    ownerID,
		Category:   category,
		BlobHandle: saved.Handle,
		Size:       saved.Size,
		Checksum:   saved.Checksum,
	})
	if err != nil {
		if delErr := s.blobs.Delete(saved.Handle); delErr != nil {
			s.logger.Warn("Не удалось удалить содержимое после ошибки создания записи",
				slog.String("blob_handle", saved.Handle),
				slog.String("error", delErr.Error()),
			)
		}
		return "", err
	}

	s.logger.Debug("Файл сохранён",
		slog.String("file_id", id.String()),
		slog.String("owner_id", ownerID),
		slog.String("category", category),
		slog.Int64("size", saved.Size),
	)
	return id.String(), nil
}

// PutAll сохраняет набор файлов одного владельца. Возвращает id по категориям.
// При ошибке уже сохранённые файлы удаляются.
func (s *FileService) PutAll(ctx context.Context, ownerID string, uploads map[string]Upload) (map[string]string, error) {
	ids := make(map[string]string, len(uploads))
	for _, category := range sortedCategories(uploads) {
		id, err := s.Put(ctx, uploads[category], ownerID, category)
		if err != nil {
			for _, saved := range ids {
				s.Discard(ctx, saved)
			}
			return nil, err
		}
		ids[category] = id
	}
	return ids, nil
}

// Open возвращает запись File и открытое содержимое с его размером.
// Отсутствие записи или содержимого: repository.ErrNotFound.
// Вызывающий код обязан закрыть файл.
func (s *FileService) Open(ctx context.Context, fileID string) (*model.File, *os.File, int64, error) {
	rec, err := s.files.Verify(ctx, repository.Filter{repository.IDField: fileID})
	if err != nil {
		return nil, nil, 0, err
	}

	f, size, err := s.blobs.Open(rec.BlobHandle)
	if err != nil {
		if errors.Is(err, filestore.ErrBlobNotFound) {
			s.logger.Error("Содержимое файла отсутствует на диске",
				slog.String("file_id", fileID),
				slog.String("blob_handle", rec.BlobHandle),
			)
			return nil, nil, 0, fmt.Errorf("%s: %w", s.files.Name(), repository.ErrNotFound)
		}
		return nil, nil, 0, err
	}
	return rec, f, size, nil
}

// Delete удаляет запись File, затем содержимое.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	filter := repository.Filter{repository.IDField: fileID}
	rec, err := s.files.Verify(ctx, filter)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, filter); err != nil {
		return err
	}
	return s.blobs.Delete(rec.BlobHandle)
}

// Discard удаляет файл, логируя и подавляя ошибки. Пустой id пропускается.
func (s *FileService) Discard(ctx context.Context, fileID string) {
	if fileID == "" {
		return
	}
	if err := s.Delete(ctx, fileID); err != nil {
		blobCleanupFailures.Inc()
		s.logger.Warn("Не удалось удалить файл",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
	}
}

// DiscardOwned удаляет все файлы владельца, подавляя ошибки.
func (s *FileService) DiscardOwned(ctx context.Context, ownerID string) {
	owned, err := s.files.GetAll(ctx, repository.Filter{"owner_id": ownerID}, 0, repository.Sort{})
	if err != nil {
		blobCleanupFailures.Inc()
		s.logger.Warn("Не удалось получить файлы владельца",
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, f := range owned {
		s.Discard(ctx, f.ID.String())
	}
}

// sortedCategories возвращает категории в детерминированном порядке.
func sortedCategories[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
