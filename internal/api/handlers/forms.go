// forms.go: разбор multipart-форм: текстовые поля, списки и файлы.
package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bigkaa/goartstore/catalog-module/internal/service"
)

// multipartForm: разобранная форма запроса.
// Первая ошибка преобразования поля сохраняется и возвращается из Err.
type multipartForm struct {
	form  *multipart.Form
	files []multipart.File
	err   error
}

// parseMultipart разбирает multipart-тело запроса.
// Вызывающий код обязан вызвать Close.
func (h *APIHandler) parseMultipart(r *http.Request) (*multipartForm, error) {
	if err := r.ParseMultipartForm(h.opts.MaxUploadMemory); err != nil {
		return nil, fmt.Errorf("ошибка парсинга multipart: %w", err)
	}
	return &multipartForm{form: r.MultipartForm}, nil
}

// String возвращает первое значение поля или пустую строку.
func (f *multipartForm) String(key string) string {
	if v := f.form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// List возвращает все непустые значения повторяющегося поля.
func (f *multipartForm) List(key string) []string {
	out := make([]string, 0, len(f.form.Value[key]))
	for _, v := range f.form.Value[key] {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Bool разбирает логическое поле; отсутствующее поле: false.
func (f *multipartForm) Bool(key string) bool {
	raw := f.String(key)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		f.fail(fmt.Errorf("поле %s: ожидается логическое значение, получено %q", key, raw))
	}
	return v
}

// Float разбирает числовое поле; отсутствующее поле: 0.
func (f *multipartForm) Float(key string) float64 {
	raw := f.String(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.fail(fmt.Errorf("поле %s: ожидается число, получено %q", key, raw))
	}
	return v
}

// Uploads открывает переданные файлы указанных категорий.
// Отсутствующие категории пропускаются.
func (f *multipartForm) Uploads(categories ...string) map[string]service.Upload {
	uploads := make(map[string]service.Upload, len(categories))
	for _, c := range categories {
		headers := f.form.File[c]
		if len(headers) == 0 {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			f.fail(fmt.Errorf("файл %s: %w", c, err))
			continue
		}
		f.files = append(f.files, file)
		uploads[c] = service.Upload{Filename: headers[0].Filename, Content: file}
	}
	return uploads
}

// Err возвращает первую ошибку разбора полей.
func (f *multipartForm) Err() error {
	return f.err
}

// Close закрывает открытые файлы и удаляет временные файлы формы.
func (f *multipartForm) Close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	_ = f.form.RemoveAll()
}

func (f *multipartForm) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}
