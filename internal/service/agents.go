// agents.go: сервис агентов: создание с файлами, чтение, листинг,
// обновление деталей и файлов, каскадное удаление.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

// agentFileCategories: файловые поля агента.
var agentFileCategories = []string{model.CategoryPlatformFile, model.CategoryThumbnailImage}

// AgentService: бизнес-логика агентов.
type AgentService struct {
	stores   *repository.Stores
	files    *FileService
	enricher *Enricher
	cascade  *Cascade
	logger   *slog.Logger
}

// NewAgentService создаёт сервис агентов.
func NewAgentService(stores *repository.Stores, files *FileService, enricher *Enricher, cascade *Cascade, logger *slog.Logger) *AgentService {
	return &AgentService{
		stores:   stores,
		files:    files,
		enricher: enricher,
		cascade:  cascade,
		logger:   logger.With(slog.String("component", "agent_service")),
	}
}

// Create сохраняет файлы и создаёт агента. Оба файла обязательны.
func (s *AgentService) Create(ctx context.Context, a *model.Agent, uploads map[string]Upload) (*model.AgentOut, error) {
	if err := validateAgent(a); err != nil {
		return nil, err
	}
	if err := requireUploads(uploads, agentFileCategories...); err != nil {
		return nil, err
	}

	a.ID = repository.NewID()
	ids, err := s.files.PutAll(ctx, a.ID.String(), onlyCategories(uploads, agentFileCategories...))
	if err != nil {
		return nil, err
	}
	a.PlatformFile = ids[model.CategoryPlatformFile]
	a.ThumbnailImage = ids[model.CategoryThumbnailImage]
	a.Rating = model.Rating{}

	if _, err := s.stores.Agents.Create(ctx, a); err != nil {
		for _, id := range ids {
			s.files.Discard(ctx, id)
		}
		return nil, err
	}

	s.logger.Info("Агент создан",
		slog.String("agent_id", a.ID.String()),
		slog.String("title", a.Title),
	)
	return s.enricher.Agent(ctx, a)
}

// Get возвращает агента с встроенными зависимостями и документами.
func (s *AgentService) Get(ctx context.Context, id string) (*model.AgentOut, error) {
	a, err := s.stores.Agents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	return s.enricher.Agent(ctx, a)
}

// List возвращает страницу агентов с общим количеством.
func (s *AgentService) List(ctx context.Context, limit int, cursor string) (*model.Page[*model.AgentOut], error) {
	page, err := s.stores.Agents.GetPage(ctx, nil, repository.PageOptions{
		Limit:     limit,
		Cursor:    cursor,
		WithTotal: true,
	})
	if err != nil {
		return nil, err
	}
	return model.MapPage(page, func(a *model.Agent) (*model.AgentOut, error) {
		return s.enricher.Agent(ctx, a)
	})
}

// UpdateDetails применяет частичное обновление полей агента.
// Каждая зависимость должна существовать.
func (s *AgentService) UpdateDetails(ctx context.Context, id string, upd *model.AgentUpdate) (*model.AgentOut, error) {
	if upd.PlatformType != nil {
		if _, err := model.ParsePlatform(string(*upd.PlatformType)); err != nil {
			return nil, validationError("%v", err)
		}
	}
	if upd.Dependencies != nil {
		for _, depID := range *upd.Dependencies {
			if _, err := s.stores.Components.Verify(ctx, repository.Filter{repository.IDField: depID}); err != nil {
				return nil, err
			}
		}
	}

	patch, err := toPatch(upd)
	if err != nil {
		return nil, err
	}
	filter := repository.Filter{repository.IDField: id}
	if err := s.stores.Agents.Update(ctx, filter, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateFiles заменяет переданные файлы агента.
func (s *AgentService) UpdateFiles(ctx context.Context, id string, uploads map[string]Upload) (*model.AgentOut, error) {
	a, err := s.stores.Agents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	err = replaceFiles(ctx, s.stores.Agents, s.files, a.ID, a.FileRefs(),
		onlyCategories(uploads, agentFileCategories...), s.logger)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete удаляет агента и всё, что ему принадлежит.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	a, err := s.stores.Agents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return err
	}
	if err := s.stores.Agents.Delete(ctx, repository.ByID(a.ID)); err != nil {
		return err
	}
	s.cascade.Owner(ctx, a.ID.String())

	s.logger.Info("Агент удалён", slog.String("agent_id", a.ID.String()))
	return nil
}

// validateAgent проверяет обязательные поля агента.
func validateAgent(a *model.Agent) error {
	if a.Title == "" {
		return validationError("поле title обязательно")
	}
	if _, err := model.ParsePlatform(string(a.PlatformType)); err != nil {
		return validationError("%v", err)
	}
	return nil
}
