package entity

import (
	"encoding/json"
	"time"
)

// EntityKind tipo de entidad archivada en la papelera.
type EntityKind string

const (
	KindInventoryItem EntityKind = "inventory_item"
	KindUser          EntityKind = "user"
	KindQuote         EntityKind = "quote"
)

// RecycleBinEntry snapshot de un registro borrado. Solo se elimina al restaurarlo.
type RecycleBinEntry struct {
	ID            string
	Kind          EntityKind
	OriginalID    string
	Data          json.RawMessage
	DeletedBy     string
	DeletedByName string // solo lectura (join con users)
	DeletedAt     time.Time
}
