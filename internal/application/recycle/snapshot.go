package recycle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// NewEntry serializa v como snapshot JSON de la papelera.
func NewEntry(kind entity.EntityKind, originalID, deletedBy string, v any) (*entity.RecycleBinEntry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", kind, err)
	}
	return &entity.RecycleBinEntry{
		ID:         uuid.New().String(),
		Kind:       kind,
		OriginalID: originalID,
		Data:       data,
		DeletedBy:  deletedBy,
		DeletedAt:  time.Now(),
	}, nil
}

// redact quita campos sensibles antes de exponer un snapshot.
func redact(kind entity.EntityKind, data json.RawMessage) json.RawMessage {
	if kind != entity.KindUser {
		return data
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return data
	}
	delete(fields, "password_hash")
	out, err := json.Marshal(fields)
	if err != nil {
		return data
	}
	return out
}
