// Пакет model: доменные модели Catalog Module.
// Хранимые (нормализованные) записи и их внешние (Out) представления.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Base: общие поля любой хранимой записи.
// ID и DateCreated неизменяемы после создания.
type Base struct {
	ID           uuid.UUID `json:"id"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
}

// Meta возвращает указатель на общие поля записи.
// Используется обобщённым хранилищем для доступа к id и датам.
func (b *Base) Meta() *Base {
	return b
}

// Page: страница результатов курсорной пагинации.
// NextCursor == nil означает конец выборки.
type Page[T any] struct {
	Items      []T     `json:"items"`
	ItemCount  int     `json:"item_count"`
	TotalCount *int    `json:"total_count,omitempty"`
	NextCursor *string `json:"next_cursor"`
}

// MapPage преобразует элементы страницы, сохраняя курсор и счётчики.
// Первая ошибка fn прерывает преобразование.
func MapPage[T, U any](p *Page[T], fn func(T) (U, error)) (*Page[U], error) {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out, err := fn(item)
		if err != nil {
			return nil, err
		}
		items = append(items, out)
	}
	return &Page[U]{
		Items:      items,
		ItemCount:  p.ItemCount,
		TotalCount: p.TotalCount,
		NextCursor: p.NextCursor,
	}, nil
}
