// Package store is the persistence layer for guarantors, patients, documents,
// audit entries and users.
package store

import (
	"context"
	"errors"

	"medflow-backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by id or key matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// PatientFilter narrows ListPatients. Zero values match everything.
type PatientFilter struct {
	Search string        // Case-insensitive substring of full name or passport number
	Status models.Status // Exact match
}

// Store defines the operations the case service needs from storage.
type Store interface {
	Ping(ctx context.Context) error

	ListGuarantors(ctx context.Context) ([]models.Guarantor, error)
	// ListGuarantorSummaries returns every guarantor, newest first, with the
	// count and summed total cost of the patients referencing it.
	ListGuarantorSummaries(ctx context.Context) ([]models.GuarantorSummary, error)
	GetGuarantor(ctx context.Context, id uint) (*models.Guarantor, error)
	CreateGuarantor(ctx context.Context, g *models.Guarantor) error
	CountGuarantors(ctx context.Context) (int64, error)

	// ListPatients returns matching patients, newest first.
	ListPatients(ctx context.Context, filter PatientFilter) ([]models.Patient, error)
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	CreatePatient(ctx context.Context, p *models.Patient) error
	// SavePatient writes every column of an existing patient.
	SavePatient(ctx context.Context, p *models.Patient) error
	DeletePatient(ctx context.Context, id uint) error

	ListDocuments(ctx context.Context, patientID uint) ([]models.Document, error)
	GetDocument(ctx context.Context, id uint) (*models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) error
	DeleteDocument(ctx context.Context, id uint) error

	AuditStore

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// AuditStore is the append-only part of the store. It has no update or delete.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, entityType string, entityID uint) ([]models.AuditLog, error)
}
