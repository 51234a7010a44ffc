// health.go: обработчики health endpoints Catalog Module.
// /health/live: liveness probe (процесс жив)
// /health/ready: readiness probe (хранилище записей доступно)
// /metrics: Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/goartstore/catalog-module/internal/config"
)

const serviceName = "catalog-module"

// Константы статусов health check.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// ReadinessChecker: интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler: обработчик health endpoints.
type HealthHandler struct {
	storageChecker ReadinessChecker
	promHandler    http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// storageChecker: проверка PostgreSQL; nil для хранилища в памяти,
// которое всегда готово.
func NewHealthHandler(storageChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		storageChecker: storageChecker,
		promHandler:    promhttp.Handler(),
	}
}

// healthCheckResult: результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse: ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse: ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		Storage healthCheckResult `json:"storage"`
	} `json:"checks"`
}

// HealthLive: liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady: readiness probe. Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	if h.storageChecker != nil {
		status, msg := h.storageChecker.CheckReady()
		resp.Checks.Storage = healthCheckResult{Status: status, Message: msg}
	} else {
		resp.Checks.Storage = healthCheckResult{Status: statusOK, Message: "хранилище в памяти"}
	}
	resp.Status = resp.Checks.Storage.Status

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics: Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
