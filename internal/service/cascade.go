// cascade.go: каскадное удаление зависимых записей и файлов.
// Ошибки логируются и подавляются: основная операция уже выполнена.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

// Cascade удаляет всё, что принадлежит удалённой записи.
type Cascade struct {
	stores *repository.Stores
	files  *FileService
	logger *slog.Logger
}

// NewCascade создаёт исполнителя каскадного удаления.
func NewCascade(stores *repository.Stores, files *FileService, logger *slog.Logger) *Cascade {
	return &Cascade{
		stores: stores,
		files:  files,
		logger: logger.With(slog.String("component", "cascade")),
	}
}

// Owner удаляет документы владельца (с их файлами), отзывы на него
// и его собственные файлы.
func (c *Cascade) Owner(ctx context.Context, ownerID string) {
	docs, err := c.stores.Documents.GetAll(ctx, repository.Filter{"owner_id": ownerID}, 0, repository.Sort{})
	if err != nil {
		c.warn("Не удалось получить документы владельца", ownerID, err)
	}
	for _, d := range docs {
		c.files.DiscardOwned(ctx, d.ID.String())
		if err := c.stores.Documents.Delete(ctx, repository.ByID(d.ID)); err != nil {
			c.warn("Не удалось удалить документ", d.ID.String(), err)
		}
	}

	reviews, err := c.stores.Reviews.GetAll(ctx, repository.Filter{"target_id": ownerID}, 0, repository.Sort{})
	if err != nil {
		c.warn("Не удалось получить отзывы", ownerID, err)
	}
	for _, r := range reviews {
		if err := c.stores.Reviews.Delete(ctx, repository.ByID(r.ID)); err != nil {
			c.warn("Не удалось удалить отзыв", r.ID.String(), err)
		}
	}

	c.files.DiscardOwned(ctx, ownerID)

	c.logger.Debug("Каскадное удаление завершено",
		slog.String("owner_id", ownerID),
		slog.Int("documents", len(docs)),
		slog.Int("reviews", len(reviews)),
	)
}

// Files удаляет только файлы владельца.
func (c *Cascade) Files(ctx context.Context, ownerID string) {
	c.files.DiscardOwned(ctx, ownerID)
}

func (c *Cascade) warn(msg, id string, err error) {
	c.logger.Warn(msg,
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
}
