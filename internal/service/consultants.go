// consultants.go: сервис консультантов.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

var consultantFileCategories = []string{model.CategoryResumeUpload, model.CategoryThumbnailImage}

// ConsultantService: бизнес-логика консультантов.
type ConsultantService struct {
	stores   *repository.Stores
	files    *FileService
	enricher *Enricher
	cascade  *Cascade
	logger   *slog.Logger
}

// NewConsultantService создаёт сервис консультантов.
func NewConsultantService(stores *repository.Stores, files *FileService, enricher *Enricher, cascade *Cascade, logger *slog.Logger) *ConsultantService {
	return &ConsultantService{
		stores:   stores,
		files:    files,
		enricher: enricher,
		cascade:  cascade,
		logger:   logger.With(slog.String("component", "consultant_service")),
	}
}

// Create сохраняет резюме и изображение и создаёт консультанта.
func (s *ConsultantService) Create(ctx context.Context, c *model.Consultant, uploads map[string]Upload) (*model.ConsultantOut, error) {
	if c.Title == "" {
		return nil, validationError("поле title обязательно")
	}
	if err := requireUploads(uploads, consultantFileCategories...); err != nil {
		return nil, err
	}

	c.ID = repository.NewID()
	ids, err := s.files.PutAll(ctx, c.ID.String(), onlyCategories(uploads, consultantFileCategories...))
	if err != nil {
		return nil, err
	}
	c.ResumeUpload = ids[model.CategoryResumeUpload]
	c.ThumbnailImage = ids[model.CategoryThumbnailImage]
	c.Rating = model.Rating{}

	if _, err := s.stores.Consultants.Create(ctx, c); err != nil {
		for _, id := range ids {
			s.files.Discard(ctx, id)
		}
		return nil, err
	}

	s.logger.Info("Консультант создан",
		slog.String("consultant_id", c.ID.String()),
		slog.String("title", c.Title),
	)
	return s.enricher.Consultant(ctx, c)
}

// Get возвращает консультанта с документами.
func (s *ConsultantService) Get(ctx context.Context, id string) (*model.ConsultantOut, error) {
	c, err := s.stores.Consultants.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	return s.enricher.Consultant(ctx, c)
}

// List возвращает страницу консультантов.
func (s *ConsultantService) List(ctx context.Context, limit int, cursor string) (*model.Page[*model.ConsultantOut], error) {
	page, err := s.stores.Consultants.GetPage(ctx, nil, repository.PageOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	return model.MapPage(page, func(c *model.Consultant) (*model.ConsultantOut, error) {
		return s.enricher.Consultant(ctx, c)
	})
}

// UpdateDetails применяет частичное обновление полей консультанта.
func (s *ConsultantService) UpdateDetails(ctx context.Context, id string, upd *model.ConsultantUpdate) (*model.ConsultantOut, error) {
	patch, err := toPatch(upd)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Consultants.Update(ctx, repository.Filter{repository.IDField: id}, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateFiles заменяет переданные файлы консультанта.
func (s *ConsultantService) UpdateFiles(ctx context.Context, id string, uploads map[string]Upload) (*model.ConsultantOut, error) {
	c, err := s.stores.Consultants.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	err = replaceFiles(ctx, s.stores.Consultants, s.files, c.ID, c.FileRefs(),
		onlyCategories(uploads, consultantFileCategories...), s.logger)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete удаляет консультанта с документами, отзывами и файлами.
func (s *ConsultantService) Delete(ctx context.Context, id string) error {
	c, err := s.stores.Consultants.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return err
	}
	if err := s.stores.Consultants.Delete(ctx, repository.ByID(c.ID)); err != nil {
		return err
	}
	s.cascade.Owner(ctx, c.ID.String())

	s.logger.Info("Консультант удалён", slog.String("consultant_id", c.ID.String()))
	return nil
}
