// documents.go: HTTP handlers документов.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/catalog-module/internal/api/errors"
	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// ListDocuments обрабатывает GET /documents?owner_id=&cursor=&limit=.
func (h *APIHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := h.listParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	page, err := h.svc.Documents.List(r.Context(), r.URL.Query().Get("owner_id"), limit, cursor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetDocument обрабатывает GET /documents/{id}.
func (h *APIHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateDocument обрабатывает POST /documents.
// Multipart form: agent_or_consultant_id, name, description, document_file.
func (h *APIHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	ownerID := form.String("agent_or_consultant_id")
	doc := &model.Document{
		Name:        form.String("name"),
		Description: form.String("description"),
	}
	uploads := form.Uploads(model.CategoryDocumentFile)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	if ownerID == "" {
		apierrors.ValidationError(w, "поле agent_or_consultant_id обязательно")
		return
	}

	out, err := h.svc.Documents.Create(r.Context(), ownerID, doc, uploads[model.CategoryDocumentFile])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateDocumentDetails обрабатывает PATCH /documents/{id}/details.
func (h *APIHandler) UpdateDocumentDetails(w http.ResponseWriter, r *http.Request) {
	var upd model.DocumentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	out, err := h.svc.Documents.UpdateDetails(r.Context(), chi.URLParam(r, "id"), &upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateDocumentFiles обрабатывает PATCH /documents/{id}/files.
func (h *APIHandler) UpdateDocumentFiles(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	defer form.Close()

	uploads := form.Uploads(model.CategoryDocumentFile)
	if err := form.Err(); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	out, err := h.svc.Documents.UpdateFiles(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteDocument обрабатывает DELETE /documents/{id}.
func (h *APIHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDeleted(w, "Document")
}
