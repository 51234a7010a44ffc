// handler.go: основной обработчик API Catalog Module.
// Объединяет health и бизнес-обработчики, регистрирует маршруты chi
// и переводит ошибки сервисного слоя в HTTP-статусы.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/catalog-module/internal/api/errors"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/service"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

// Services: сервисы, которые обслуживает API.
type Services struct {
	Agents      *service.AgentService
	Consultants *service.ConsultantService
	Components  *service.ComponentService
	Documents   *service.DocumentService
	Reviews     *service.ReviewService
	Downloads   *service.DownloadService
}

// Options: параметры разбора запросов.
type Options struct {
	// PageDefaultLimit: limit листинга, если параметр не передан
	PageDefaultLimit int
	// PageMaxLimit: верхняя граница limit, большие значения урезаются
	PageMaxLimit int
	// MaxUploadMemory: буфер multipart в памяти (байт), остальное во временных файлах
	MaxUploadMemory int64
}

// APIHandler: основной обработчик API Catalog Module.
type APIHandler struct {
	health *HealthHandler
	svc    Services
	opts   Options
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(health *HealthHandler, svc Services, opts Options, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		health: health,
		svc:    svc,
		opts:   opts,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// Register регистрирует все маршруты. Бизнес-маршруты монтируются под prefix,
// health и metrics в корне.
func (h *APIHandler) Register(r chi.Router, prefix string) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	r.Route(prefix, func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Get("/{id}", h.GetAgent)
			r.Patch("/{id}/details", h.UpdateAgentDetails)
			r.Patch("/{id}/files", h.UpdateAgentFiles)
			r.Delete("/{id}", h.DeleteAgent)
			r.Post("/{id}/review", h.ReviewAgent)
		})

		r.Route("/consultants", func(r chi.Router) {
			r.Get("/", h.ListConsultants)
			r.Post("/", h.CreateConsultant)
			r.Get("/{id}", h.GetConsultant)
			r.Patch("/{id}/details", h.UpdateConsultantDetails)
			r.Patch("/{id}/files", h.UpdateConsultantFiles)
			r.Delete("/{id}", h.DeleteConsultant)
			r.Post("/{id}/review", h.ReviewConsultant)
		})

		r.Route("/components", func(r chi.Router) {
			r.Get("/", h.ListComponents)
			r.Post("/", h.CreateComponent)
			r.Get("/{id}", h.GetComponent)
			r.Patch("/{id}/details", h.UpdateComponentDetails)
			r.Patch("/{id}/files", h.UpdateComponentFiles)
			r.Delete("/{id}", h.DeleteComponent)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.ListDocuments)
			r.Post("/", h.CreateDocument)
			r.Get("/{id}", h.GetDocument)
			r.Patch("/{id}/details", h.UpdateDocumentDetails)
			r.Patch("/{id}/files", h.UpdateDocumentFiles)
			r.Delete("/{id}", h.DeleteDocument)
		})

		r.Get("/files/{token}/download", h.DownloadFile)
	})
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDeleted отвечает {"message": "<Kind> deleted"}.
func writeDeleted(w http.ResponseWriter, kind string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": kind + " deleted"})
}

// writeError переводит ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки логируются и отдаются как 500.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rangeErr *service.RangeError
	switch {
	case errors.As(err, &rangeErr):
		apierrors.RangeNotSatisfiable(w, rangeErr.Size, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, repository.ErrMalformedID),
		errors.Is(err, repository.ErrForbiddenField),
		errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, token.ErrInvalidToken):
		apierrors.Unauthorized(w, err.Error())
	default:
		h.logger.Error("Необработанная ошибка",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, err.Error())
	}
}

// listParams разбирает limit и cursor листинга.
// По умолчанию limit равен PageDefaultLimit, больший PageMaxLimit урезается,
// значение меньше 1 или не число даёт ошибку.
func (h *APIHandler) listParams(r *http.Request) (limit int, cursor string, err error) {
	q := r.URL.Query()
	limit = h.opts.PageDefaultLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, "", fmt.Errorf("параметр limit должен быть целым числом не меньше 1, получено %q", raw)
		}
	}
	if h.opts.PageMaxLimit > 0 && limit > h.opts.PageMaxLimit {
		limit = h.opts.PageMaxLimit
	}
	return limit, q.Get("cursor"), nil
}

// decodeJSON разбирает тело запроса в v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("некорректный JSON: %w", err)
	}
	return nil
}
