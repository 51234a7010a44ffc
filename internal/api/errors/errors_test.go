package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
	}{
		{"validation", func(w http.ResponseWriter) { ValidationError(w, "msg") }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "msg") }, http.StatusNotFound},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "msg") }, http.StatusUnauthorized},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "msg") }, http.StatusInternalServerError},
		{"range", func(w http.ResponseWriter) { RangeNotSatisfiable(w, 10, "msg") }, http.StatusRequestedRangeNotSatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидается %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("ошибка разбора тела: %v", err)
			}
			if body["detail"] != "msg" || len(body) != 1 {
				t.Errorf("тело = %v, ожидается {detail: msg}", body)
			}
		})
	}
}

func TestRangeNotSatisfiable_ContentRange(t *testing.T) {
	w := httptest.NewRecorder()
	RangeNotSatisfiable(w, 1234, "за пределами")
	if got := w.Header().Get("Content-Range"); got != "bytes */1234" {
		t.Errorf("Content-Range = %q, ожидается bytes */1234", got)
	}
}
