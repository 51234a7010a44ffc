// agents.go: HTTP handlers агентов: листинг, чтение, создание (multipart),
// обновление деталей (JSON) и файлов (multipart), удаление, отзыв.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/catalog-module/internal/api/errors"
	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// ListAgents обрабатывает GET /agents?cursor=&limit=.
func (h *APIHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := h.listParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	page, err := h.svc.Agents.List(r.Context(), limit, cursor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetAgent обрабатывает GET /agents/{id}.
func (h *APIHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Agents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateAgent обрабатывает POST /agents.
// Multipart form: текстовые поля агента, списки повторяющимися полями,
// файлы platform_file и thumbnail_image (обязательны).
func (h *APIHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	agent := &model.Agent{
		Title:              form.String("title"),
		Category:           form.String("category"),
		Tagline:            form.String("tagline"),
		Provider:           form.String("provider"),
		PricingModel:       form.String("pricing_model"),
		PlatformType:       model.Platform(form.String("platform_type")),
		DemoAvailable:      form.Bool("demo_available"),
		Description:        form.String("description"),
		KeyFeatures:        form.List("key_features"),
		Integrations:       form.List("integrations"),
		RelatedAISolutions: form.List("related_ai_solutions"),
		Dependencies:       []string{},
	}
	uploads := form.Uploads(model.CategoryPlatformFile, model.CategoryThumbnailImage)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Agents.Create(r.Context(), agent, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateAgentDetails обрабатывает PATCH /agents/{id}/details.
// Поля, отсутствующие в JSON или равные null, не изменяются.
func (h *APIHandler) UpdateAgentDetails(w http.ResponseWriter, r *http.Request) {
	var upd model.AgentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	out, err := h.svc.Agents.UpdateDetails(r.Context(), chi.URLParam(r, "id"), &upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateAgentFiles обрабатывает PATCH /agents/{id}/files.
// Заменяются только переданные файлы.
func (h *APIHandler) UpdateAgentFiles(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	uploads := form.Uploads(model.CategoryPlatformFile, model.CategoryThumbnailImage)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Agents.UpdateFiles(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteAgent обрабатывает DELETE /agents/{id}.
func (h *APIHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Agents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDeleted(w, "Agent")
}

// ReviewAgent обрабатывает POST /agents/{id}/review.
func (h *APIHandler) ReviewAgent(w http.ResponseWriter, r *http.Request) {
	h.createReview(w, r, model.TargetAgent)
}

// createReview: общий обработчик отзывов на агента или консультанта.
func (h *APIHandler) createReview(w http.ResponseWriter, r *http.Request, target model.TargetType) {
	var in model.ReviewIn
	if err := decodeJSON(r, &in); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	review, err := h.svc.Reviews.Create(r.Context(), target, chi.URLParam(r, "id"), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
