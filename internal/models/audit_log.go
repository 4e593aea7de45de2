package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions.
const (
	ActionCreatePatient   = "CREATE_PATIENT"
	ActionUpdatePatient   = "UPDATE_PATIENT"
	ActionDeletePatient   = "DELETE_PATIENT"
	ActionCreateGuarantor = "CREATE_GUARANTOR"
	ActionUploadDocument  = "UPLOAD_DOCUMENT"
	ActionDeleteDocument  = "DELETE_DOCUMENT"
)

// Audited entity types.
const (
	EntityPatient   = "patient"
	EntityGuarantor = "guarantor"
	EntityDocument  = "document"
)

// AuditLog is an append-only record of a mutating action.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Action     string         `json:"action" gorm:"not null;size:64"`
	EntityID   uint           `json:"entityId" gorm:"not null;index:idx_audit_entity"`
	EntityType string         `json:"entityType" gorm:"not null;size:32;index:idx_audit_entity"`
	UserID     *uint          `json:"userId" gorm:"index"` // Nil for system actions
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}
