// Пакет errors: конструкторы HTTP-ответов с ошибками Catalog Module.
// Единый формат: {"detail": "..."}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorBody: структура тела ответа ошибки.
type errorBody struct {
	Detail string `json:"detail"`
}

// WriteError записывает ответ ошибки в стандартном формате.
func WriteError(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Detail: detail})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError: 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusBadRequest, detail)
}

// NotFound: 404 ресурс не найден.
func NotFound(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusNotFound, detail)
}

// Unauthorized: 401 недействительный токен доступа.
func Unauthorized(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusUnauthorized, detail)
}

// RangeNotSatisfiable: 416 с Content-Range: bytes */size.
func RangeNotSatisfiable(w http.ResponseWriter, size int64, detail string) {
	w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
	WriteError(w, http.StatusRequestedRangeNotSatisfiable, detail)
}

// InternalError: 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusInternalServerError, detail)
}
