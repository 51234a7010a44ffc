// components.go: HTTP handlers компонентов.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/catalog-module/internal/api/errors"
	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// ListComponents обрабатывает GET /components?cursor=&limit=.
func (h *APIHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := h.listParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	page, err := h.svc.Components.List(r.Context(), limit, cursor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetComponent обрабатывает GET /components/{id}.
func (h *APIHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Components.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateComponent обрабатывает POST /components.
// Файлы logo и dependency_file обязательны.
func (h *APIHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	component := &model.Component{
		Name:        form.String("name"),
		Description: form.String("description"),
		Price:       form.Float("price"),
	}
	uploads := form.Uploads(model.CategoryLogo, model.CategoryDependencyFile)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Components.Create(r.Context(), component, uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateComponentDetails обрабатывает PATCH /components/{id}/details.
func (h *APIHandler) UpdateComponentDetails(w http.ResponseWriter, r *http.Request) {
	var upd model.ComponentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	out, err := h.svc.Components.UpdateDetails(r.Context(), chi.URLParam(r, "id"), &upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateComponentFiles обрабатывает PATCH /components/{id}/files.
func (h *APIHandler) UpdateComponentFiles(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	uploads := form.Uploads(model.CategoryLogo, model.CategoryDependencyFile)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Components.UpdateFiles(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteComponent обрабатывает DELETE /components/{id}.
func (h *APIHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Components.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDeleted(w, "Component")
}
