// Пакет filestore: хранение содержимого файлов каталога на диске.
// Streaming-запись с подсчётом SHA-256 на лету, чтение и удаление
// по дескриптору (blob handle), который хранится в записи File.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound: содержимое по дескриптору отсутствует на диске.
var ErrBlobNotFound = errors.New("содержимое файла не найдено")

// ErrInvalidHandle: дескриптор не является именем файла в dataDir.
var ErrInvalidHandle = errors.New("некорректный дескриптор файла")

// FileStore: управление содержимым файлов на диске.
type FileStore struct {
	// dataDir: корневая директория хранения (CM_DATA_DIR)
	dataDir string
}

// SaveResult: результат сохранения содержимого.
type SaveResult struct {
	// Handle: имя файла в dataDir
	Handle string
	// Size: размер записанных данных в байтах
	Size int64
	// Checksum: SHA-256 содержимого (hex)
	Checksum string
}

// New создаёт FileStore, создавая директорию данных при необходимости.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

// Save записывает содержимое из reader с подсчётом SHA-256 на лету.
// Формат имени: {name}_{uuid}.{ext}
//
// Паттерн: temp файл → запись + SHA-256 → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(reader io.Reader, filename string) (*SaveResult, error) {
	handle := generateHandle(filename)
	fullPath := filepath.Join(fs.dataDir, handle)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(f, io.TeeReader(reader, hasher))
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		Handle:   handle,
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open открывает содержимое для чтения и возвращает его размер.
// Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(handle string) (*os.File, int64, error) {
	fullPath, err := fs.path(handle)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrBlobNotFound, handle)
		}
		return nil, 0, fmt.Errorf("ошибка открытия файла %s: %w", handle, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("ошибка получения информации о файле %s: %w", handle, err)
	}
	return f, info.Size(), nil
}

// Delete удаляет содержимое. Возвращает nil, если его уже нет.
func (fs *FileStore) Delete(handle string) error {
	fullPath, err := fs.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", handle, err)
	}
	return nil
}

// Exists проверяет наличие содержимого на диске.
func (fs *FileStore) Exists(handle string) bool {
	fullPath, err := fs.path(handle)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// DataDir возвращает путь к директории данных.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// path строит полный путь, не выпуская дескриптор за пределы dataDir.
func (fs *FileStore) path(handle string) (string, error) {
	if handle == "" || handle != filepath.Base(handle) || strings.HasPrefix(handle, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return filepath.Join(fs.dataDir, handle), nil
}

// generateHandle генерирует имя файла для хранения.
// Пример: report_01934f6e-8c2a-7b3d-9a41-2f6c1d0e5b7a.pdf
func generateHandle(filename string) string {
	ext := sanitizeExt(filepath.Ext(filename))
	name := sanitize(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if len(name) > 50 {
		name = name[:50]
	}
	return fmt.Sprintf("%s_%s%s", name, uuid.Must(uuid.NewV7()), ext)
}

// sanitize оставляет только буквы, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}

// sanitizeExt очищает расширение; пустое, если после очистки ничего не осталось.
func sanitizeExt(ext string) string {
	clean := strings.TrimPrefix(ext, ".")
	var result strings.Builder
	for _, r := range clean {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 || result.Len() > 10 {
		return ""
	}
	return "." + result.String()
}
