package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryBackend: коллекции в памяти процесса.
// Используется в тестах и при CM_STORAGE_BACKEND=memory.
type memoryBackend struct {
	mu    sync.Mutex
	colls map[string]*memCollection
}

// NewMemoryBackend создаёт пустой in-memory бэкенд.
func NewMemoryBackend() Backend {
	return &memoryBackend{colls: make(map[string]*memCollection)}
}

// Collection возвращает (или создаёт) коллекцию по имени.
func (b *memoryBackend) Collection(name string) Collection {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.colls[name]
	if !ok {
		c = &memCollection{name: name, docs: make(map[uuid.UUID]Document)}
		b.colls[name] = c
	}
	return c
}

// memCollection: потокобезопасная коллекция документов.
// Документы копируются на входе и выходе.
type memCollection struct {
	mu   sync.RWMutex
	name string
	docs map[uuid.UUID]Document
}

func (c *memCollection) Name() string { return c.name }

// Insert добавляет документ. Повторный id: ошибка.
func (c *memCollection) Insert(_ context.Context, doc Document) error {
	data, err := cloneData(doc.Data)
	if err != nil {
		return err
	}
	doc.Data = data

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[doc.ID]; exists {
		return fmt.Errorf("документ %s уже существует", doc.ID)
	}
	c.docs[doc.ID] = doc
	return nil
}

// Find выбирает документы по фильтру, курсору и сортировке.
func (c *memCollection) Find(_ context.Context, q Query) ([]Document, error) {
	c.mu.RLock()
	matched, err := c.match(q.Filter, q.After)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	sortDocuments(matched, q.Sort)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]Document, 0, len(matched))
	for _, d := range matched {
		data, err := cloneData(d.Data)
		if err != nil {
			return nil, err
		}
		d.Data = data
		out = append(out, d)
	}
	return out, nil
}

// Count возвращает количество документов по фильтру.
func (c *memCollection) Count(_ context.Context, f Filter) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	matched, err := c.match(f, nil)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// UpdateOne применяет мутацию к первой по id подходящей записи.
func (c *memCollection) UpdateOne(_ context.Context, f Filter, m Mutation, modified time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok, err := c.first(f)
	if err != nil || !ok {
		return false, err
	}

	data, err := cloneData(doc.Data)
	if err != nil {
		return false, err
	}
	if len(m.Set) > 0 {
		set, err := cloneData(m.Set)
		if err != nil {
			return false, err
		}
		for k, v := range set {
			data[k] = v
		}
	}
	for _, path := range sortedKeys(m.Inc) {
		if err := incPath(data, strings.Split(path, "."), m.Inc[path]); err != nil {
			return false, err
		}
	}

	doc.Data = data
	doc.DateModified = modified
	c.docs[doc.ID] = doc
	return true, nil
}

// DeleteOne удаляет первую по id подходящую запись.
func (c *memCollection) DeleteOne(_ context.Context, f Filter) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok, err := c.first(f)
	if err != nil || !ok {
		return false, err
	}
	delete(c.docs, doc.ID)
	return true, nil
}

// first возвращает подходящий документ с наименьшим id. Вызывается под блокировкой.
func (c *memCollection) first(f Filter) (Document, bool, error) {
	matched, err := c.match(f, nil)
	if err != nil || len(matched) == 0 {
		return Document{}, false, err
	}
	sortDocuments(matched, Sort{})
	return matched[0], true, nil
}

// match отбирает документы по фильтру и курсору. Вызывается под блокировкой.
func (c *memCollection) match(f Filter, after *uuid.UUID) ([]Document, error) {
	var wantID *uuid.UUID
	if v, ok := f[IDField]; ok {
		id, err := normalizeID(v)
		if err != nil {
			return nil, err
		}
		wantID = &id
	}

	var out []Document
	for id, doc := range c.docs {
		if wantID != nil && id != *wantID {
			continue
		}
		if after != nil && compareIDs(id, *after) <= 0 {
			continue
		}
		if !matchFields(doc.Data, f) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// matchFields проверяет равенство полей верхнего уровня (кроме id).
func matchFields(data map[string]any, f Filter) bool {
	for k, want := range f {
		if k == IDField {
			continue
		}
		got, ok := data[k]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

// sortDocuments сортирует документы по полю s; id: вторичный ключ.
func sortDocuments(docs []Document, s Sort) {
	field := validSortField(s.Field)
	slices.SortFunc(docs, func(a, b Document) int {
		var cmp int
		switch field {
		case SortByDateCreated:
			cmp = a.DateCreated.Compare(b.DateCreated)
		case SortByDateModified:
			cmp = a.DateModified.Compare(b.DateModified)
		}
		if cmp == 0 {
			cmp = compareIDs(a.ID, b.ID)
		}
		if s.Desc {
			return -cmp
		}
		return cmp
	})
}

// compareIDs сравнивает идентификаторы побайтно (порядок UUIDv7 = порядок времени).
func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// incPath увеличивает числовое значение по пути, создавая недостающее поле.
func incPath(data map[string]any, path []string, delta int64) error {
	node := data
	for _, seg := range path[:len(path)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[seg] = next
		}
		node = next
	}

	leaf := path[len(path)-1]
	var current int64
	switch v := node[leaf].(type) {
	case nil:
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return fmt.Errorf("поле %q не является числом", strings.Join(path, "."))
			}
			n = int64(f)
		}
		current = n
	default:
		return fmt.Errorf("поле %q не является числом", strings.Join(path, "."))
	}

	node[leaf] = json.Number(strconv.FormatInt(current+delta, 10))
	return nil
}
