package repository

import (
	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
)

// Имена коллекций (таблиц).
const (
	CollectionAgents      = "agents"
	CollectionConsultants = "consultants"
	CollectionComponents  = "components"
	CollectionDocuments   = "documents"
	CollectionReviews     = "reviews"
	CollectionFiles       = "files"
)

// Поле пользователя-владельца, запрещённое к изменению у записей каталога.
const fieldUserID = "user_id"

// Stores: хранилища всех видов записей каталога.
type Stores struct {
	Agents      *Store[model.Agent]
	Consultants *Store[model.Consultant]
	Components  *Store[model.Component]
	Documents   *Store[model.Document]
	Reviews     *Store[model.Review]
	Files       *Store[model.File]
}

// NewStores создаёт хранилища поверх бэкенда со списками неизменяемых полей.
func NewStores(b Backend) *Stores {
	return &Stores{
		Agents:      NewStore[model.Agent](b.Collection(CollectionAgents), fieldUserID),
		Consultants: NewStore[model.Consultant](b.Collection(CollectionConsultants), fieldUserID),
		Components:  NewStore[model.Component](b.Collection(CollectionComponents), fieldUserID),
		Documents:   NewStore[model.Document](b.Collection(CollectionDocuments), fieldUserID, "owner_id", "owner_type"),
		Reviews:     NewStore[model.Review](b.Collection(CollectionReviews), fieldUserID, "target_id", "target_type"),
		Files:       NewStore[model.File](b.Collection(CollectionFiles), "owner_id", "blob_handle"),
	}
}
