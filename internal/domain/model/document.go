package model

import "fmt"

// OwnerType: дискриминатор полиморфной ссылки Document.OwnerID.
type OwnerType string

// Допустимые владельцы документа.
const (
	OwnerAgent      OwnerType = "agent"
	OwnerConsultant OwnerType = "consultant"
)

// Document: сопроводительный документ агента или консультанта.
type Document struct {
	Base

	Name         string    `json:"name"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"owner_id"`
	OwnerType    OwnerType `json:"owner_type"`
	DocumentFile string    `json:"document_file"`
}

// FileRefs возвращает ссылки на файлы документа по категориям.
func (d *Document) FileRefs() map[string]string {
	return map[string]string{
		CategoryDocumentFile: d.DocumentFile,
	}
}

// DocumentOut: документ с URL скачивания.
type DocumentOut struct {
	Base

	Name         string    `json:"name"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"owner_id"`
	OwnerType    OwnerType `json:"owner_type"`
	DocumentFile string    `json:"document_file"`
}

// DocumentUpdate: частичное обновление деталей документа.
type DocumentUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ParseOwnerType проверяет значение дискриминатора.
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(s) {
	case OwnerAgent, OwnerConsultant:
		return OwnerType(s), nil
	default:
		return "", fmt.Errorf("недопустимый тип владельца %q", s)
	}
}
