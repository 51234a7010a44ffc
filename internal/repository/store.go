package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// record: ограничение на тип записи: встраивает model.Base.
type record interface {
	Meta() *model.Base
}

// meta возвращает общие поля записи.
func meta[T any](rec *T) *model.Base {
	return any(rec).(record).Meta()
}

// baseUpdateBan: поля, которые нельзя менять ни у одной записи.
var baseUpdateBan = []string{IDField, fieldDateCreated}

// PageOptions: параметры постраничной выборки.
type PageOptions struct {
	Limit  int
	Cursor string
	// WithTotal: дополнительно посчитать общее число записей по фильтру
	WithTotal bool
}

// Store: типизированное хранилище записей одной коллекции.
type Store[T any] struct {
	coll      Collection
	updateBan []string
	now       func() time.Time
}

// NewStore создаёт хранилище поверх коллекции.
// updateBan дополняет базовый список неизменяемых полей.
// Паникует, если *T не встраивает model.Base.
func NewStore[T any](coll Collection, updateBan ...string) *Store[T] {
	if _, ok := any(new(T)).(record); !ok {
		panic(fmt.Sprintf("repository: тип %T не реализует Meta()", new(T)))
	}
	ban := slices.Concat(baseUpdateBan, updateBan)
	return &Store[T]{
		coll:      coll,
		updateBan: ban,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Name возвращает имя коллекции.
func (s *Store[T]) Name() string {
	return s.coll.Name()
}

// notFound оборачивает ErrNotFound именем коллекции.
func (s *Store[T]) notFound() error {
	return fmt.Errorf("%s: %w", s.coll.Name(), ErrNotFound)
}

// normalizeFilter приводит значение id в фильтре к uuid.UUID.
func normalizeFilter(f Filter) (Filter, error) {
	v, ok := f[IDField]
	if !ok {
		return f, nil
	}
	id, err := normalizeID(v)
	if err != nil {
		return nil, err
	}
	out := make(Filter, len(f))
	for k, val := range f {
		out[k] = val
	}
	out[IDField] = id
	return out, nil
}

// Create сохраняет новую запись. Если ID уже задан (NewID), он сохраняется.
// Обе даты выставляются в текущее время. Возвращает идентификатор записи.
func (s *Store[T]) Create(ctx context.Context, rec *T) (uuid.UUID, error) {
	base := meta(rec)
	if base.ID == uuid.Nil {
		base.ID = NewID()
	}
	now := s.now()
	base.DateCreated = now
	base.DateModified = now

	doc, err := toDocument(rec)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.coll.Insert(ctx, doc); err != nil {
		return uuid.Nil, fmt.Errorf("%s: ошибка создания записи: %w", s.coll.Name(), err)
	}
	return base.ID, nil
}

// Get возвращает первую запись по фильтру. found=false, если записи нет.
func (s *Store[T]) Get(ctx context.Context, f Filter) (rec *T, found bool, err error) {
	f, err = normalizeFilter(f)
	if err != nil {
		return nil, false, err
	}
	docs, err := s.coll.Find(ctx, Query{Filter: f, Limit: 1})
	if err != nil {
		return nil, false, fmt.Errorf("%s: ошибка чтения записи: %w", s.coll.Name(), err)
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	rec, err = fromDocument[T](docs[0])
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Verify возвращает запись или ErrNotFound.
func (s *Store[T]) Verify(ctx context.Context, f Filter) (*T, error) {
	rec, found, err := s.Get(ctx, f)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, s.notFound()
	}
	return rec, nil
}

// GetAll возвращает все записи по фильтру. limit=0: без ограничения.
func (s *Store[T]) GetAll(ctx context.Context, f Filter, limit int, sort Sort) ([]*T, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	docs, err := s.coll.Find(ctx, Query{Filter: f, Limit: limit, Sort: sort})
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка чтения записей: %w", s.coll.Name(), err)
	}
	return decodeAll[T](docs)
}

// GetPage возвращает страницу записей в порядке возрастания id.
// next_cursor выставляется, только если после последней записи страницы
// есть ещё хотя бы одна запись по тому же фильтру.
func (s *Store[T]) GetPage(ctx context.Context, f Filter, opts PageOptions) (*model.Page[*T], error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}

	q := Query{Filter: f, Limit: opts.Limit}
	if c := strings.TrimSpace(opts.Cursor); c != "" {
		after, err := ParseID(c)
		if err != nil {
			return nil, err
		}
		q.After = &after
	}

	docs, err := s.coll.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка чтения страницы: %w", s.coll.Name(), err)
	}
	items, err := decodeAll[T](docs)
	if err != nil {
		return nil, err
	}

	page := &model.Page[*T]{Items: items, ItemCount: len(items)}

	if len(docs) > 0 {
		last := docs[len(docs)-1].ID
		more, err := s.coll.Find(ctx, Query{Filter: f, After: &last, Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка чтения страницы: %w", s.coll.Name(), err)
		}
		if len(more) > 0 {
			next := last.String()
			page.NextCursor = &next
		}
	}

	if opts.WithTotal {
		total, err := s.coll.Count(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка подсчёта записей: %w", s.coll.Name(), err)
		}
		page.TotalCount = &total
	}

	return page, nil
}

// Count возвращает количество записей по фильтру.
func (s *Store[T]) Count(ctx context.Context, f Filter) (int, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return 0, err
	}
	n, err := s.coll.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка подсчёта записей: %w", s.coll.Name(), err)
	}
	return n, nil
}

// Update поверхностно присваивает поля patch первой записи по фильтру
// и обновляет date_modified.
func (s *Store[T]) Update(ctx context.Context, f Filter, patch map[string]any) error {
	return s.AdvancedUpdate(ctx, f, Mutation{Set: patch})
}

// AdvancedUpdate применяет произвольную мутацию (Set и/или Inc)
// и обновляет date_modified. Запрещённые поля проверяются
// по первому сегменту каждого пути.
func (s *Store[T]) AdvancedUpdate(ctx context.Context, f Filter, m Mutation) error {
	f, err := normalizeFilter(f)
	if err != nil {
		return err
	}
	if _, err := s.Verify(ctx, f); err != nil {
		return err
	}
	if err := s.checkBan(m); err != nil {
		return err
	}

	ok, err := s.coll.UpdateOne(ctx, f, m, s.now())
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления записи: %w", s.coll.Name(), err)
	}
	if !ok {
		return s.notFound()
	}
	return nil
}

// Delete удаляет первую запись по фильтру.
func (s *Store[T]) Delete(ctx context.Context, f Filter) error {
	f, err := normalizeFilter(f)
	if err != nil {
		return err
	}
	if _, err := s.Verify(ctx, f); err != nil {
		return err
	}
	ok, err := s.coll.DeleteOne(ctx, f)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления записи: %w", s.coll.Name(), err)
	}
	if !ok {
		return s.notFound()
	}
	return nil
}

// checkBan проверяет, что мутация не затрагивает неизменяемые поля.
func (s *Store[T]) checkBan(m Mutation) error {
	check := func(path string) error {
		top, _, _ := strings.Cut(path, ".")
		if slices.Contains(s.updateBan, top) {
			return fmt.Errorf("%w: %s", ErrForbiddenField, top)
		}
		return nil
	}
	for k := range m.Set {
		if err := check(k); err != nil {
			return err
		}
	}
	for k := range m.Inc {
		if err := check(k); err != nil {
			return err
		}
	}
	return nil
}

// decodeAll восстанавливает типизированные записи из документов.
func decodeAll[T any](docs []Document) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		rec, err := fromDocument[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
