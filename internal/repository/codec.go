package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Служебные поля, хранящиеся вне Data.
const (
	fieldDateCreated  = "date_created"
	fieldDateModified = "date_modified"
)

// decodeJSONMap разбирает JSON-объект, сохраняя числа как json.Number.
func decodeJSONMap(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("ошибка декодирования документа: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// toDocument сериализует запись в документ коллекции.
func toDocument[T any](rec *T) (Document, error) {
	base := meta(rec)

	raw, err := json.Marshal(rec)
	if err != nil {
		return Document{}, fmt.Errorf("ошибка сериализации записи: %w", err)
	}
	data, err := decodeJSONMap(raw)
	if err != nil {
		return Document{}, err
	}
	delete(data, IDField)
	delete(data, fieldDateCreated)
	delete(data, fieldDateModified)

	return Document{
		ID:           base.ID,
		Data:         data,
		DateCreated:  base.DateCreated,
		DateModified: base.DateModified,
	}, nil
}

// fromDocument восстанавливает типизированную запись из документа.
func fromDocument[T any](doc Document) (*T, error) {
	merged := make(map[string]any, len(doc.Data)+3)
	for k, v := range doc.Data {
		merged[k] = v
	}
	merged[IDField] = doc.ID
	merged[fieldDateCreated] = doc.DateCreated
	merged[fieldDateModified] = doc.DateModified

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации документа: %w", err)
	}
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	return rec, nil
}

// cloneData делает глубокую копию данных документа.
func cloneData(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка копирования документа: %w", err)
	}
	return decodeJSONMap(raw)
}

// jsonEqual сравнивает значения по их JSON-представлению.
func jsonEqual(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}
