// components.go: сервис компонентов (зависимостей агентов).
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

var componentFileCategories = []string{model.CategoryLogo, model.CategoryDependencyFile}

// ComponentService: бизнес-логика компонентов.
type ComponentService struct {
	stores   *repository.Stores
	files    *FileService
	enricher *Enricher
	cascade  *Cascade
	logger   *slog.Logger
}

// NewComponentService создаёт сервис компонентов.
func NewComponentService(stores *repository.Stores, files *FileService, enricher *Enricher, cascade *Cascade, logger *slog.Logger) *ComponentService {
	return &ComponentService{
		stores:   stores,
		files:    files,
		enricher: enricher,
		cascade:  cascade,
		logger:   logger.With(slog.String("component", "component_service")),
	}
}

// Create сохраняет логотип и файл зависимости и создаёт компонент.
func (s *ComponentService) Create(ctx context.Context, c *model.Component, uploads map[string]Upload) (*model.ComponentOut, error) {
	if c.Name == "" {
		return nil, validationError("поле name обязательно")
	}
	if c.Price < 0 {
		return nil, validationError("цена не может быть отрицательной")
	}
	if err := requireUploads(uploads, componentFileCategories...); err != nil {
		return nil, err
	}

	c.ID = repository.NewID()
	ids, err := s.files.PutAll(ctx, c.ID.String(), onlyCategories(uploads, componentFileCategories...))
	if err != nil {
		return nil, err
	}
	c.Logo = ids[model.CategoryLogo]
	c.DependencyFile = ids[model.CategoryDependencyFile]

	if _, err := s.stores.Components.Create(ctx, c); err != nil {
		for _, id := range ids {
			s.files.Discard(ctx, id)
		}
		return nil, err
	}

	s.logger.Info("Компонент создан",
		slog.String("component_id", c.ID.String()),
		slog.String("name", c.Name),
	)
	return s.enricher.Component(ctx, c)
}

// Get возвращает компонент.
func (s *ComponentService) Get(ctx context.Context, id string) (*model.ComponentOut, error) {
	c, err := s.stores.Components.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	return s.enricher.Component(ctx, c)
}

// List возвращает страницу компонентов.
func (s *ComponentService) List(ctx context.Context, limit int, cursor string) (*model.Page[*model.ComponentOut], error) {
	page, err := s.stores.Components.GetPage(ctx, nil, repository.PageOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	return model.MapPage(page, func(c *model.Component) (*model.ComponentOut, error) {
		return s.enricher.Component(ctx, c)
	})
}

// UpdateDetails применяет частичное обновление полей компонента.
func (s *ComponentService) UpdateDetails(ctx context.Context, id string, upd *model.ComponentUpdate) (*model.ComponentOut, error) {
	if upd.Price != nil && *upd.Price < 0 {
		return nil, validationError("цена не может быть отрицательной")
	}
	patch, err := toPatch(upd)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Components.Update(ctx, repository.Filter{repository.IDField: id}, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateFiles заменяет переданные файлы компонента.
func (s *ComponentService) UpdateFiles(ctx context.Context, id string, uploads map[string]Upload) (*model.ComponentOut, error) {
	c, err := s.stores.Components.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	err = replaceFiles(ctx, s.stores.Components, s.files, c.ID, c.FileRefs(),
		onlyCategories(uploads, componentFileCategories...), s.logger)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete удаляет компонент и его файлы.
// Агенты, ссылающиеся на компонент, не изменяются.
func (s *ComponentService) Delete(ctx context.Context, id string) error {
	c, err := s.stores.Components.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return err
	}
	if err := s.stores.Components.Delete(ctx, repository.ByID(c.ID)); err != nil {
		return err
	}
	s.cascade.Files(ctx, c.ID.String())

	s.logger.Info("Компонент удалён", slog.String("component_id", c.ID.String()))
	return nil
}
