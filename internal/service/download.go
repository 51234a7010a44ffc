// download.go: скачивание файлов по токену доступа.
// Полный pipeline: токен → запись File → содержимое → ответ 200 или 206.
// Поддерживается один диапазон Range: bytes=a-b, bytes=a-, bytes=-n.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

// Prometheus-метрики download.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cm_downloads_total",
		Help: "Общее количество запросов на скачивание (по статусу).",
	}, []string{"status"})

	downloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cm_download_duration_seconds",
		Help:    "Длительность скачивания (от запроса до завершения streaming).",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cm_download_bytes_total",
		Help: "Общее количество переданных байт при скачивании.",
	})

	activeDownloads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cm_active_downloads",
		Help: "Количество активных скачиваний.",
	})
)

// defaultContentType: тип содержимого для неизвестных расширений.
const defaultContentType = "application/octet-stream"

// DownloadService: отдача содержимого файлов по токену доступа.
type DownloadService struct {
	files  *FileService
	tokens *token.Codec
	logger *slog.Logger
}

// NewDownloadService создаёт сервис скачивания.
func NewDownloadService(files *FileService, tokens *token.Codec, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		files:  files,
		tokens: tokens,
		logger: logger.With(slog.String("component", "download_service")),
	}
}

// Download проверяет токен и отдаёт файл в w.
//
// Pipeline:
//  1. Проверить токен (назначение file_access) → id файла
//  2. Найти запись File и открыть содержимое
//  3. Разобрать Range; недостижимый диапазон → *RangeError
//  4. Отдать 200 (весь файл) или 206 (диапазон)
//
// Ошибки возвращаются до записи заголовков; после начала streaming
// ошибки только логируются.
func (s *DownloadService) Download(ctx context.Context, w http.ResponseWriter, tokenString, rangeHeader string) error {
	start := time.Now()
	activeDownloads.Inc()
	defer activeDownloads.Dec()

	claims, err := s.tokens.VerifyPurpose(tokenString, token.PurposeFileAccess)
	if err != nil {
		downloadsTotal.WithLabelValues("invalid_token").Inc()
		return err
	}

	rec, f, size, err := s.files.Open(ctx, claims.SubjectID)
	if err != nil {
		downloadsTotal.WithLabelValues("not_found").Inc()
		return err
	}
	defer f.Close()

	br, err := parseRange(rangeHeader, size)
	if err != nil {
		downloadsTotal.WithLabelValues("invalid_range").Inc()
		return err
	}

	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Type", contentTypeByName(rec.Filename))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.Filename}))

	status := http.StatusOK
	length := size
	if br != nil {
		if _, err := f.Seek(br.start, io.SeekStart); err != nil {
			downloadsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("позиционирование в файле %s: %w", rec.ID, err)
		}
		status = http.StatusPartialContent
		length = br.length()
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	}
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	written, err := io.CopyN(w, f, length)
	if err != nil {
		// заголовки уже отправлены
		s.logger.Error("Ошибка streaming download",
			slog.String("file_id", rec.ID.String()),
			slog.Int64("bytes_written", written),
			slog.String("error", err.Error()),
		)
		downloadsTotal.WithLabelValues("stream_error").Inc()
		return nil
	}

	duration := time.Since(start)
	downloadsTotal.WithLabelValues("success").Inc()
	downloadDuration.Observe(duration.Seconds())
	downloadBytesTotal.Add(float64(written))

	s.logger.Debug("Download завершён",
		slog.String("file_id", rec.ID.String()),
		slog.Int64("bytes", written),
		slog.Int("status", status),
		slog.Duration("duration", duration),
	)
	return nil
}

// byteRange: включительный диапазон [start, end].
type byteRange struct {
	start, end int64
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange разбирает заголовок Range для файла размера size.
// nil без ошибки: отдать файл целиком (нет заголовка, другая единица
// или нечисловые границы). Учитывается только первый диапазон списка.
func parseRange(header string, size int64) (*byteRange, error) {
	header = strings.TrimSpace(header)
	const unit = "bytes="
	if len(header) < len(unit) || !strings.EqualFold(header[:len(unit)], unit) {
		return nil, nil
	}

	first, _, _ := strings.Cut(header[len(unit):], ",")
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(first), "-")
	if !ok {
		return nil, nil
	}
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)

	// bytes=-n: последние n байт
	if startStr == "" {
		n, err := parseOffset(endStr)
		if err != nil {
			return nil, nil
		}
		if n == 0 || size == 0 {
			return nil, &RangeError{Size: size}
		}
		n = min(n, size)
		return &byteRange{start: size - n, end: size - 1}, nil
	}

	start, err := parseOffset(startStr)
	if err != nil {
		return nil, nil
	}
	end := size - 1
	if endStr != "" {
		if end, err = parseOffset(endStr); err != nil {
			return nil, nil
		}
	}

	if start >= size || end >= size || start > end {
		return nil, &RangeError{Size: size}
	}
	return &byteRange{start: start, end: end}, nil
}

// parseOffset разбирает неотрицательное смещение в байтах.
func parseOffset(s string) (int64, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, fmt.Errorf("некорректное смещение %q", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

// contentTypeByName определяет MIME-тип по расширению имени файла.
func contentTypeByName(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}
