package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/storage/filestore"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

const (
	testPrefix   = "/api/v1"
	testTokenTTL = 48 * time.Hour
)

// testEnv: сервисы поверх in-memory хранилища и временной директории.
type testEnv struct {
	stores      *repository.Stores
	blobs       *filestore.FileStore
	tokens      *token.Codec
	files       *FileService
	enricher    *Enricher
	agents      *AgentService
	consultants *ConsultantService
	components  *ComponentService
	documents   *DocumentService
	reviews     *ReviewService
	downloads   *DownloadService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stores := repository.NewStores(repository.NewMemoryBackend())

	blobs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}
	tokens, err := token.New("test-secret", "HS256")
	if err != nil {
		t.Fatalf("ошибка создания кодека токенов: %v", err)
	}

	files := NewFileService(stores.Files, blobs, logger)
	enricher := NewEnricher(stores, tokens, testTokenTTL, testPrefix)
	cascade := NewCascade(stores, files, logger)

	return &testEnv{
		stores:      stores,
		blobs:       blobs,
		tokens:      tokens,
		files:       files,
		enricher:    enricher,
		agents:      NewAgentService(stores, files, enricher, cascade, logger),
		consultants: NewConsultantService(stores, files, enricher, cascade, logger),
		components:  NewComponentService(stores, files, enricher, cascade, logger),
		documents:   NewDocumentService(stores, files, enricher, cascade, logger),
		reviews:     NewReviewService(stores, logger),
		downloads:   NewDownloadService(files, tokens, logger),
	}
}

// upload создаёт Upload из строки.
func upload(name, content string) Upload {
	return Upload{Filename: name, Content: strings.NewReader(content)}
}

// fileIDFromURL извлекает id файла из URL скачивания через токен.
func (e *testEnv) fileIDFromURL(t *testing.T, url string) string {
	t.Helper()
	tok := strings.TrimSuffix(strings.TrimPrefix(url, testPrefix+"/files/"), "/download")
	claims, err := e.tokens.VerifyPurpose(tok, token.PurposeFileAccess)
	if err != nil {
		t.Fatalf("URL %q содержит невалидный токен: %v", url, err)
	}
	return claims.SubjectID
}

// readFile читает содержимое файла по id.
func (e *testEnv) readFile(t *testing.T, fileID string) string {
	t.Helper()
	_, f, _, err := e.files.Open(context.Background(), fileID)
	if err != nil {
		t.Fatalf("Open(%s) ошибка: %v", fileID, err)
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	return buf.String()
}

// createAgent создаёт агента с файлами по умолчанию.
func (e *testEnv) createAgent(t *testing.T, title string) *model.AgentOut {
	t.Helper()
	out, err := e.agents.Create(context.Background(), &model.Agent{
		Title:        title,
		PlatformType: model.PlatformPython,
		KeyFeatures:  []string{"ocr"},
	}, map[string]Upload{
		model.CategoryPlatformFile:   upload("bot.zip", "package:"+title),
		model.CategoryThumbnailImage: upload("thumb.png", "image:"+title),
	})
	if err != nil {
		t.Fatalf("AgentService.Create() ошибка: %v", err)
	}
	return out
}

// createConsultant создаёт консультанта с файлами по умолчанию.
func (e *testEnv) createConsultant(t *testing.T, title string) *model.ConsultantOut {
	t.Helper()
	out, err := e.consultants.Create(context.Background(), &model.Consultant{
		Title:   title,
		DayRate: 800,
	}, map[string]Upload{
		model.CategoryResumeUpload:   upload("cv.pdf", "resume:"+title),
		model.CategoryThumbnailImage: upload("me.jpg", "photo:"+title),
	})
	if err != nil {
		t.Fatalf("ConsultantService.Create() ошибка: %v", err)
	}
	return out
}

// createComponent создаёт компонент с файлами по умолчанию.
func (e *testEnv) createComponent(t *testing.T, name string) *model.ComponentOut {
	t.Helper()
	out, err := e.components.Create(context.Background(), &model.Component{
		Name:  name,
		Price: 9.5,
	}, map[string]Upload{
		model.CategoryLogo:           upload("logo.svg", "logo:"+name),
		model.CategoryDependencyFile: upload("dep.dll", "dep:"+name),
	})
	if err != nil {
		t.Fatalf("ComponentService.Create() ошибка: %v", err)
	}
	return out
}

// countFiles возвращает число записей File.
func (e *testEnv) countFiles(t *testing.T) int {
	t.Helper()
	n, err := e.stores.Files.Count(context.Background(), nil)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	return n
}

// strList возвращает указатель на список для частичных обновлений.
func strList(v ...string) *[]string {
	if v == nil {
		v = []string{}
	}
	return &v
}
