package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/agents", "/api/v1/agents"},
		{"/api/v1/agents/0192f0c1-7a5e-7cc1-9d3a-4b1f2e3d4c5b", "/api/v1/agents/{id}"},
		{"/api/v1/agents/0192f0c1-7a5e-7cc1-9d3a-4b1f2e3d4c5b/details", "/api/v1/agents/{id}/details"},
		{"/api/v1/consultants/0192f0c1-7a5e-7cc1-9d3a-4b1f2e3d4c5b/review", "/api/v1/consultants/{id}/review"},
		{"/api/v1/files/eyJhbGciOiJIUzI1NiJ9.e30.sig/download", "/api/v1/files/{token}/download"},
		{"/api/v1/agents/not-a-uuid", "/api/v1/agents/not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"успех", http.StatusOK, "INFO"},
		{"ошибка клиента", http.StatusNotFound, "WARN"},
		{"ошибка сервера", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/files/secret-token/download", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("ошибка разбора записи лога: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, ожидается %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, ожидается %d", entry["status"], tt.status)
			}
			if entry["bytes"] != float64(5) {
				t.Errorf("bytes = %v, ожидается 5", entry["bytes"])
			}
			if entry["path"] != "/api/v1/files/{token}/download" {
				t.Errorf("path = %v, токен не должен попадать в лог", entry["path"])
			}
		})
	}
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	_, _ = rw.Write([]byte("abc"))
	rw.WriteHeader(http.StatusTeapot) // после тела статус уже отправлен

	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, ожидается 200", rw.statusCode)
	}
	if rw.written != 3 {
		t.Errorf("written = %d, ожидается 3", rw.written)
	}
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/agents", nil))
	if rec.Code != http.StatusCreated {
		t.Errorf("статус = %d, ожидается 201", rec.Code)
	}
}
