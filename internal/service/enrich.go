// enrich.go: сборка внешних (Out) представлений записей:
// ссылки на файлы заменяются URL скачивания с токеном,
// зависимости и документы владельца встраиваются целиком.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

// Enricher строит Out-представления записей каталога.
type Enricher struct {
	stores    *repository.Stores
	tokens    *token.Codec
	tokenTTL  time.Duration
	apiPrefix string
}

// NewEnricher создаёт построитель Out-представлений.
// apiPrefix: префикс маршрутов, с которого начинаются URL скачивания.
func NewEnricher(stores *repository.Stores, tokens *token.Codec, tokenTTL time.Duration, apiPrefix string) *Enricher {
	return &Enricher{
		stores:    stores,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		apiPrefix: apiPrefix,
	}
}

// FileURL выпускает токен на файл и возвращает URL скачивания.
// Пустая ссылка остаётся пустой.
func (e *Enricher) FileURL(fileID string) (string, error) {
	if fileID == "" {
		return "", nil
	}
	tok, err := e.tokens.Issue(fileID, token.PurposeFileAccess, token.RoleNone, e.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("выпуск токена для файла %s: %w", fileID, err)
	}
	return fmt.Sprintf("%s/files/%s/download", e.apiPrefix, tok), nil
}

// fileURLs заменяет набор ссылок на URL; порядок аргументов сохраняется.
func (e *Enricher) fileURLs(ids ...string) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		u, err := e.FileURL(id)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

// Component строит ComponentOut.
func (e *Enricher) Component(_ context.Context, c *model.Component) (*model.ComponentOut, error) {
	urls, err := e.fileURLs(c.Logo, c.DependencyFile)
	if err != nil {
		return nil, err
	}
	return &model.ComponentOut{
		Base:           c.Base,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		Logo:           urls[0],
		DependencyFile: urls[1],
	}, nil
}

// Document строит DocumentOut.
func (e *Enricher) Document(_ context.Context, d *model.Document) (*model.DocumentOut, error) {
	u, err := e.FileURL(d.DocumentFile)
	if err != nil {
		return nil, err
	}
	return &model.DocumentOut{
		Base:         d.Base,
		Name:         d.Name,
		Description:  d.Description,
		OwnerID:      d.OwnerID,
		OwnerType:    d.OwnerType,
		DocumentFile: u,
	}, nil
}

// Agent строит AgentOut. Отсутствующая зависимость: ошибка NotFound.
func (e *Enricher) Agent(ctx context.Context, a *model.Agent) (*model.AgentOut, error) {
	urls, err := e.fileURLs(a.PlatformFile, a.ThumbnailImage)
	if err != nil {
		return nil, err
	}

	deps := make([]model.ComponentOut, 0, len(a.Dependencies))
	for _, depID := range a.Dependencies {
		c, err := e.stores.Components.Verify(ctx, repository.Filter{repository.IDField: depID})
		if err != nil {
			return nil, fmt.Errorf("зависимость %s агента %s: %w", depID, a.ID, err)
		}
		out, err := e.Component(ctx, c)
		if err != nil {
			return nil, err
		}
		deps = append(deps, *out)
	}

	docs, err := e.ownedDocuments(ctx, a.ID.String())
	if err != nil {
		return nil, err
	}

	return &model.AgentOut{
		Base:                a.Base,
		Title:               a.Title,
		Category:            a.Category,
		Tagline:             a.Tagline,
		Provider:            a.Provider,
		PricingModel:        a.PricingModel,
		PlatformType:        a.PlatformType,
		DemoAvailable:       a.DemoAvailable,
		Description:         a.Description,
		KeyFeatures:         nonNil(a.KeyFeatures),
		Integrations:        nonNil(a.Integrations),
		RelatedAISolutions:  nonNil(a.RelatedAISolutions),
		Rating:              a.Rating.Out(),
		Dependencies:        deps,
		SupportingDocuments: docs,
		PlatformFile:        urls[0],
		ThumbnailImage:      urls[1],
	}, nil
}

// Consultant строит ConsultantOut.
func (e *Enricher) Consultant(ctx context.Context, c *model.Consultant) (*model.ConsultantOut, error) {
	urls, err := e.fileURLs(c.ResumeUpload, c.ThumbnailImage)
	if err != nil {
		return nil, err
	}

	docs, err := e.ownedDocuments(ctx, c.ID.String())
	if err != nil {
		return nil, err
	}

	return &model.ConsultantOut{
		Base:                c.Base,
		Title:               c.Title,
		Category:            c.Category,
		Tagline:             c.Tagline,
		Provider:            c.Provider,
		Description:         c.Description,
		ServicesOffered:     nonNil(c.ServicesOffered),
		IndustriesServed:    nonNil(c.IndustriesServed),
		DayRate:             c.DayRate,
		RelatedServices:     nonNil(c.RelatedServices),
		Rating:              c.Rating.Out(),
		SupportingDocuments: docs,
		ResumeUpload:        urls[0],
		ThumbnailImage:      urls[1],
	}, nil
}

// ownedDocuments встраивает документы владельца в порядке id.
func (e *Enricher) ownedDocuments(ctx context.Context, ownerID string) ([]model.DocumentOut, error) {
	docs, err := e.stores.Documents.GetAll(ctx, repository.Filter{"owner_id": ownerID}, 0, repository.Sort{})
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentOut, 0, len(docs))
	for _, d := range docs {
		do, err := e.Document(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, *do)
	}
	return out, nil
}

// nonNil заменяет nil-срез пустым, чтобы в JSON был [] вместо null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
