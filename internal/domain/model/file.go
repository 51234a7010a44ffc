package model

// Категории файлов: имя поля записи-владельца, которое ссылается на файл.
const (
	CategoryPlatformFile   = "platform_file"
	CategoryThumbnailImage = "thumbnail_image"
	CategoryResumeUpload   = "resume_upload"
	CategoryLogo           = "logo"
	CategoryDependencyFile = "dependency_file"
	CategoryDocumentFile   = "document_file"
)

// File: метаданные загруженного файла.
// Содержимое хранится отдельно (filestore), BlobHandle: путь в хранилище.
type File struct {
	Base

	Filename       string `json:"filename"`
	OwnerID        string `json:"owner_id"`
	Category       string `json:"category"`
	RestrictAccess bool   `json:"restrict_access"`
	BlobHandle     string `json:"blob_handle"`
	Size           int64  `json:"size"`
	Checksum       string `json:"checksum"`
}
