package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

const payload = "0123456789abcdefghij" // 20 байт

// putPayload сохраняет тестовый файл и возвращает токен на него.
func putPayload(t *testing.T, env *testEnv, filename string) string {
	t.Helper()
	id, err := env.files.Put(context.Background(), upload(filename, payload), repository.NewID().String(), model.CategoryDocumentFile)
	if err != nil {
		t.Fatalf("Put() ошибка: %v", err)
	}
	tok, err := env.tokens.Issue(id, token.PurposeFileAccess, token.RoleNone, time.Hour)
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}
	return tok
}

func TestParseRange(t *testing.T) {
	const size = 20

	tests := []struct {
		name      string
		header    string
		wantNil   bool
		wantErr   bool
		wantStart int64
		wantEnd   int64
	}{
		{name: "нет заголовка", header: "", wantNil: true},
		{name: "полный диапазон", header: "bytes=0-19", wantStart: 0, wantEnd: 19},
		{name: "середина", header: "bytes=5-9", wantStart: 5, wantEnd: 9},
		{name: "открытый конец", header: "bytes=15-", wantStart: 15, wantEnd: 19},
		{name: "суффикс", header: "bytes=-4", wantStart: 16, wantEnd: 19},
		{name: "суффикс больше размера", header: "bytes=-100", wantStart: 0, wantEnd: 19},
		{name: "только первый диапазон", header: "bytes=0-1, 5-9", wantStart: 0, wantEnd: 1},
		{name: "регистр единицы", header: "Bytes=2-3", wantStart: 2, wantEnd: 3},
		{name: "start равен размеру", header: "bytes=20-20", wantErr: true},
		{name: "start больше размера", header: "bytes=25-", wantErr: true},
		{name: "end за пределами", header: "bytes=0-20", wantErr: true},
		{name: "start больше end", header: "bytes=9-5", wantErr: true},
		{name: "пустой суффикс", header: "bytes=-0", wantErr: true},
		{name: "другая единица", header: "items=0-5", wantNil: true},
		{name: "нечисловые границы", header: "bytes=a-b", wantNil: true},
		{name: "без дефиса", header: "bytes=5", wantNil: true},
		{name: "отрицательный start", header: "bytes=--5", wantNil: true},
		{name: "мусор", header: "garbage", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br, err := parseRange(tt.header, size)
			if tt.wantErr {
				var re *RangeError
				if !errors.As(err, &re) || re.Size != size {
					t.Fatalf("ожидалась RangeError{Size: %d}, получено: %v", size, err)
				}
				if !errors.Is(err, ErrInvalidRange) {
					t.Error("RangeError должна соответствовать ErrInvalidRange")
				}
				return
			}
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if tt.wantNil {
				if br != nil {
					t.Errorf("ожидался nil, получено %+v", *br)
				}
				return
			}
			if br == nil {
				t.Fatal("ожидался диапазон, получен nil")
			}
			if br.start != tt.wantStart || br.end != tt.wantEnd {
				t.Errorf("диапазон = %d-%d, ожидается %d-%d", br.start, br.end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseRange_EmptyFile(t *testing.T) {
	for _, h := range []string{"bytes=0-", "bytes=-1", "bytes=0-0"} {
		if _, err := parseRange(h, 0); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s для пустого файла: ожидалась ErrInvalidRange, получено: %v", h, err)
		}
	}
}

func TestDownload_Full(t *testing.T) {
	env := newTestEnv(t)
	tok := putPayload(t, env, "report.pdf")

	w := httptest.NewRecorder()
	if err := env.downloads.Download(context.Background(), w, tok, ""); err != nil {
		t.Fatalf("Download() ошибка: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидается 200", w.Code)
	}
	if w.Body.String() != payload {
		t.Errorf("тело = %q, ожидается %q", w.Body.String(), payload)
	}
	h := w.Header()
	if h.Get("Content-Length") != strconv.Itoa(len(payload)) {
		t.Errorf("Content-Length = %q", h.Get("Content-Length"))
	}
	if h.Get("Accept-Ranges") != "bytes" {
		t.Errorf("Accept-Ranges = %q", h.Get("Accept-Ranges"))
	}
	if h.Get("Content-Type") != "application/pdf" {
		t.Errorf("Content-Type = %q, ожидается application/pdf", h.Get("Content-Type"))
	}
	if h.Get("Content-Disposition") != "attachment; filename=report.pdf" {
		t.Errorf("Content-Disposition = %q", h.Get("Content-Disposition"))
	}
	if h.Get("Content-Range") != "" {
		t.Errorf("Content-Range не ожидался: %q", h.Get("Content-Range"))
	}
}

func TestDownload_Ranges(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantRange  string
	}{
		{"весь файл диапазоном", "bytes=0-19", http.StatusPartialContent, payload, "bytes 0-19/20"},
		{"середина", "bytes=10-14", http.StatusPartialContent, "abcde", "bytes 10-14/20"},
		{"открытый конец", "bytes=18-", http.StatusPartialContent, "ij", "bytes 18-19/20"},
		{"суффикс", "bytes=-3", http.StatusPartialContent, "hij", "bytes 17-19/20"},
		{"мусор игнорируется", "bytes=x-y", http.StatusOK, payload, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tok := putPayload(t, env, "data.bin")

			w := httptest.NewRecorder()
			if err := env.downloads.Download(context.Background(), w, tok, tt.header); err != nil {
				t.Fatalf("Download() ошибка: %v", err)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидается %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("тело = %q, ожидается %q", w.Body.String(), tt.wantBody)
			}
			if got := w.Header().Get("Content-Range"); got != tt.wantRange {
				t.Errorf("Content-Range = %q, ожидается %q", got, tt.wantRange)
			}
			if got := w.Header().Get("Content-Length"); got != strconv.Itoa(len(tt.wantBody)) {
				t.Errorf("Content-Length = %q, ожидается %d", got, len(tt.wantBody))
			}
			if got := w.Header().Get("Content-Type"); got != defaultContentType {
				t.Errorf("Content-Type = %q, ожидается %s", got, defaultContentType)
			}
		})
	}
}

func TestDownload_Unsatisfiable(t *testing.T) {
	env := newTestEnv(t)
	tok := putPayload(t, env, "data.bin")

	w := httptest.NewRecorder()
	err := env.downloads.Download(context.Background(), w, tok, "bytes=20-20")
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("ожидалась RangeError, получено: %v", err)
	}
	if re.Size != int64(len(payload)) {
		t.Errorf("Size = %d, ожидается %d", re.Size, len(payload))
	}
	if w.Body.Len() != 0 {
		t.Errorf("тело должно быть пустым, получено %d байт", w.Body.Len())
	}
}

func TestDownload_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sessionTok, err := env.tokens.Issue("x", "session", token.RoleNone, time.Hour)
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}
	missingTok, err := env.tokens.Issue(repository.NewID().String(), token.PurposeFileAccess, token.RoleNone, time.Hour)
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"мусорный токен", "not-a-token", token.ErrInvalidToken},
		{"чужое назначение", sessionTok, token.ErrInvalidToken},
		{"файл не существует", missingTok, repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			err := env.downloads.Download(ctx, w, tt.token, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась %v, получено: %v", tt.wantErr, err)
			}
		})
	}
}

func TestDownload_BlobMissingOnDisk(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.files.Put(ctx, upload("a.txt", "x"), "owner", model.CategoryLogo)
	if err != nil {
		t.Fatalf("Put() ошибка: %v", err)
	}
	rec, err := env.stores.Files.Verify(ctx, repository.Filter{repository.IDField: id})
	if err != nil {
		t.Fatalf("Verify() ошибка: %v", err)
	}
	if err := env.blobs.Delete(rec.BlobHandle); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}

	tok, err := env.tokens.Issue(id, token.PurposeFileAccess, token.RoleNone, time.Hour)
	if err != nil {
		t.Fatalf("Issue() ошибка: %v", err)
	}
	if err := env.downloads.Download(ctx, httptest.NewRecorder(), tok, ""); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено: %v", err)
	}
}
