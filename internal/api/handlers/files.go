// files.go: скачивание файлов по токену доступа.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DownloadFile обрабатывает GET /files/{token}/download.
// Поддерживает Range requests (206); недостижимый диапазон: 416.
func (h *APIHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Downloads.Download(r.Context(), w, chi.URLParam(r, "token"), r.Header.Get("Range"))
	if err != nil {
		h.writeError(w, r, err)
	}
}
