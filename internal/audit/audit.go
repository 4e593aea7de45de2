// Package audit appends the accountability trail for mutating operations.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
)

// Recorder writes audit entries. It never updates or removes them.
type Recorder struct {
	store store.AuditStore
}

func NewRecorder(s store.AuditStore) *Recorder {
	return &Recorder{store: s}
}

// Record appends one entry. details is serialized to JSON; a nil details is
// stored as an empty object. actorID 0 records a system action.
func (r *Recorder) Record(ctx context.Context, action, entityType string, entityID, actorID uint, details any) (*models.AuditLog, error) {
	raw := []byte("{}")
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("encode audit details: %w", err)
		}
		raw = b
	}

	entry := &models.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityType: entityType,
		Details:    datatypes.JSON(raw),
	}
	if actorID != 0 {
		id := actorID
		entry.UserID = &id
	}
	if err := r.store.AppendAuditLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the entries for one entity in append order.
func (r *Recorder) History(ctx context.Context, entityType string, entityID uint) ([]models.AuditLog, error) {
	return r.store.ListAuditLogs(ctx, entityType, entityID)
}
