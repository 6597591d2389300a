package dto

import (
	"encoding/json"
	"time"
)

// AuditLogResponse entrada del log de auditoría.
type AuditLogResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// RecycleBinEntryResponse entrada de la papelera con el snapshot ya parseado.
type RecycleBinEntryResponse struct {
	ID            string          `json:"id"`
	EntityKind    string          `json:"entity_kind"`
	OriginalID    string          `json:"original_id"`
	Data          json.RawMessage `json:"data"`
	DeletedBy     string          `json:"deleted_by,omitempty"`
	DeletedByUser string          `json:"deleted_by_user"`
	DeletedAt     time.Time       `json:"deleted_at"`
}
