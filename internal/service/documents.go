// documents.go: сервис сопроводительных документов агентов и консультантов.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

// DocumentService: бизнес-логика документов.
type DocumentService struct {
	stores   *repository.Stores
	files    *FileService
	enricher *Enricher
	cascade  *Cascade
	logger   *slog.Logger
}

// NewDocumentService создаёт сервис документов.
func NewDocumentService(stores *repository.Stores, files *FileService, enricher *Enricher, cascade *Cascade, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		stores:   stores,
		files:    files,
		enricher: enricher,
		cascade:  cascade,
		logger:   logger.With(slog.String("component", "document_service")),
	}
}

// resolveOwner определяет тип владельца: сначала агенты, затем консультанты.
func (s *DocumentService) resolveOwner(ctx context.Context, ownerID string) (model.OwnerType, error) {
	filter := repository.Filter{repository.IDField: ownerID}

	if _, found, err := s.stores.Agents.Get(ctx, filter); err != nil {
		return "", err
	} else if found {
		return model.OwnerAgent, nil
	}

	if _, found, err := s.stores.Consultants.Get(ctx, filter); err != nil {
		return "", err
	} else if found {
		return model.OwnerConsultant, nil
	}

	return "", fmt.Errorf("агент или консультант %s: %w", ownerID, repository.ErrNotFound)
}

// Create создаёт документ владельца ownerID с файлом.
func (s *DocumentService) Create(ctx context.Context, ownerID string, d *model.Document, up Upload) (*model.DocumentOut, error) {
	if d.Name == "" {
		return nil, validationError("поле name обязательно")
	}
	uploads := map[string]Upload{model.CategoryDocumentFile: up}
	if err := requireUploads(uploads, model.CategoryDocumentFile); err != nil {
		return nil, err
	}

	ownerType, err := s.resolveOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	owner, err := repository.ParseID(ownerID)
	if err != nil {
		return nil, err
	}

	d.ID = repository.NewID()
	d.OwnerID = owner.String()
	d.OwnerType = ownerType

	fileID, err := s.files.Put(ctx, up, d.ID.String(), model.CategoryDocumentFile)
	if err != nil {
		return nil, err
	}
	d.DocumentFile = fileID

	if _, err := s.stores.Documents.Create(ctx, d); err != nil {
		s.files.Discard(ctx, fileID)
		return nil, err
	}

	s.logger.Info("Документ создан",
		slog.String("document_id", d.ID.String()),
		slog.String("owner_id", d.OwnerID),
		slog.String("owner_type", string(d.OwnerType)),
	)
	return s.enricher.Document(ctx, d)
}

// Get возвращает документ.
func (s *DocumentService) Get(ctx context.Context, id string) (*model.DocumentOut, error) {
	d, err := s.stores.Documents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	return s.enricher.Document(ctx, d)
}

// List возвращает страницу документов; ownerID != "": только документы владельца.
func (s *DocumentService) List(ctx context.Context, ownerID string, limit int, cursor string) (*model.Page[*model.DocumentOut], error) {
	var filter repository.Filter
	if ownerID != "" {
		owner, err := repository.ParseID(ownerID)
		if err != nil {
			return nil, err
		}
		filter = repository.Filter{"owner_id": owner.String()}
	}

	page, err := s.stores.Documents.GetPage(ctx, filter, repository.PageOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}
	return model.MapPage(page, func(d *model.Document) (*model.DocumentOut, error) {
		return s.enricher.Document(ctx, d)
	})
}

// UpdateDetails применяет частичное обновление полей документа.
func (s *DocumentService) UpdateDetails(ctx context.Context, id string, upd *model.DocumentUpdate) (*model.DocumentOut, error) {
	patch, err := toPatch(upd)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Documents.Update(ctx, repository.Filter{repository.IDField: id}, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateFiles заменяет файл документа.
func (s *DocumentService) UpdateFiles(ctx context.Context, id string, uploads map[string]Upload) (*model.DocumentOut, error) {
	d, err := s.stores.Documents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return nil, err
	}
	err = replaceFiles(ctx, s.stores.Documents, s.files, d.ID, d.FileRefs(),
		onlyCategories(uploads, model.CategoryDocumentFile), s.logger)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete удаляет документ и его файл.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	d, err := s.stores.Documents.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		return err
	}
	if err := s.stores.Documents.Delete(ctx, repository.ByID(d.ID)); err != nil {
		return err
	}
	s.cascade.Files(ctx, d.ID.String())

	s.logger.Info("Документ удалён", slog.String("document_id", d.ID.String()))
	return nil
}
