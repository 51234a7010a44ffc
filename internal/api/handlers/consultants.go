// consultants.go: HTTP handlers консультантов.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/catalog-module/internal/api/errors"
	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// ListConsultants обрабатывает GET /consultants?cursor=&limit=.
func (h *APIHandler) ListConsultants(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := h.listParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	page, err := h.svc.Consultants.List(r.Context(), limit, cursor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetConsultant обрабатывает GET /consultants/{id}.
func (h *APIHandler) GetConsultant(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Consultants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateConsultant обрабатывает POST /consultants.
// Файлы resume_upload и thumbnail_image обязательны.
func (h *APIHandler) CreateConsultant(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	consultant := &model.Consultant{
		Title:            form.String("title"),
		Category:         form.String("category"),
		Tagline:          form.String("tagline"),
		Provider:         form.String("provider"),
		Description:      form.String("description"),
		ServicesOffered:  form.List("services_offered"),
		IndustriesServed: form.List("industries_served"),
		DayRate:          form.Float("day_rate"),
		RelatedServices:  form.List("related_services"),
	}
	uploads := form.Uploads(model.CategoryResumeUpload, model.CategoryThumbnailImage)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Consultants.Create(r.Context(), consultant, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateConsultantDetails обрабатывает PATCH /consultants/{id}/details.
func (h *APIHandler) UpdateConsultantDetails(w http.ResponseWriter, r *http.Request) {
	var upd model.ConsultantUpdate
	if err := decodeJSON(r, &upd); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	out, err := h.svc.Consultants.UpdateDetails(r.Context(), chi.URLParam(r, "id"), &upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateConsultantFiles обрабатывает PATCH /consultants/{id}/files.
func (h *APIHandler) UpdateConsultantFiles(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	uploads := form.Uploads(model.CategoryResumeUpload, model.CategoryThumbnailImage)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Consultants.UpdateFiles(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteConsultant обрабатывает DELETE /consultants/{id}.
func (h *APIHandler) DeleteConsultant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Consultants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDeleted(w, "Consultant")
}

// ReviewConsultant обрабатывает POST /consultants/{id}/review.
func (h *APIHandler) ReviewConsultant(w http.ResponseWriter, r *http.Request) {
	h.createReview(w, r, model.TargetConsultant)
}
