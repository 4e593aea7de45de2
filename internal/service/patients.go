package service

import (
	"context"
	"errors"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
	"medflow-backend/internal/utils"
	"medflow-backend/internal/workflow"
)

// ListPatients returns patients matching search and status, newest first.
func (s *Service) ListPatients(ctx context.Context, search, status string) ([]models.Patient, error) {
	filter := store.PatientFilter{Search: search}
	if status != "" {
		st, err := workflow.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	patients, err := s.store.ListPatients(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("list patients", err)
	}
	return patients, nil
}

// GetPatient returns the patient with its guarantor and documents.
func (s *Service) GetPatient(ctx context.Context, id uint) (*models.PatientDetail, error) {
	p, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, notFound("Patient", "get patient", err)
	}

	detail := &models.PatientDetail{Patient: *p, Outstanding: utils.Outstanding(*p), Documents: []models.Document{}}
	if p.GuarantorID != nil {
		g, err := s.store.GetGuarantor(ctx, *p.GuarantorID)
		switch {
		case err == nil:
			detail.Guarantor = g
		case !errors.Is(err, store.ErrNotFound):
			return nil, apperrors.Internal("get guarantor", err)
		}
	}

	docs, err := s.store.ListDocuments(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("list documents", err)
	}
	detail.Documents = append(detail.Documents, docs...)
	return detail, nil
}

// CreatePatient validates and inserts a new case file.
func (s *Service) CreatePatient(ctx context.Context, actor access.Actor, in workflow.NewPatient) (*models.Patient, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	p, err := workflow.Build(in, s.now())
	if err == nil {
		err = s.checkGuarantor(ctx, p.GuarantorID)
	}
	if err == nil {
		if cerr := s.store.CreatePatient(ctx, &p); cerr != nil {
			err = apperrors.Internal("create patient", cerr)
		}
	}
	s.outcome("create-patient", err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.ActionCreatePatient, models.EntityPatient, p.ID, p)
	return &p, nil
}

// UpdatePatient applies a partial update after the access gate approves it.
// Updates to one patient are serialized.
func (s *Service) UpdatePatient(ctx context.Context, actor access.Actor, id uint, u workflow.PatientUpdate) (*models.Patient, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.store.GetPatient(ctx, id)
	if err != nil {
		err = notFound("Patient", "get patient", err)
		s.outcome(access.OpUpdateFields, err)
		return nil, err
	}
	if err := s.authorize(actor, *existing, workflow.RequiredOperations(*existing, u)...); err != nil {
		return nil, err
	}

	next, changes, err := workflow.Apply(*existing, u, s.now())
	if err == nil && u.GuarantorID.Value != nil {
		err = s.checkGuarantor(ctx, u.GuarantorID.Value)
	}
	if err == nil {
		if serr := s.store.SavePatient(ctx, &next); serr != nil {
			err = notFound("Patient", "save patient", serr)
		}
	}
	s.outcome(access.OpUpdateFields, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.ActionUpdatePatient, models.EntityPatient, id, changes)

	saved, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, notFound("Patient", "reload patient", err)
	}
	return saved, nil
}

// DeletePatient removes the patient and, explicitly, each of its documents.
func (s *Service) DeletePatient(ctx context.Context, actor access.Actor, id uint) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.store.GetPatient(ctx, id)
	if err != nil {
		err = notFound("Patient", "get patient", err)
		s.outcome(access.OpDeletePatient, err)
		return err
	}
	if err := s.authorize(actor, *p, access.OpDeletePatient); err != nil {
		return err
	}

	docs, err := s.store.ListDocuments(ctx, id)
	if err != nil {
		err = apperrors.Internal("list documents", err)
		s.outcome(access.OpDeletePatient, err)
		return err
	}
	removed := make([]uint, 0, len(docs))
	for _, d := range docs {
		if err := s.removeDocument(ctx, actor, d); err != nil {
			s.outcome(access.OpDeletePatient, err)
			return err
		}
		removed = append(removed, d.ID)
	}

	if err := s.store.DeletePatient(ctx, id); err != nil {
		err = notFound("Patient", "delete patient", err)
		s.outcome(access.OpDeletePatient, err)
		return err
	}
	s.outcome(access.OpDeletePatient, nil)

	s.record(ctx, actor, models.ActionDeletePatient, models.EntityPatient, id, map[string]any{
		"fullName":       p.FullName,
		"passportNumber": p.PassportNumber,
		"status":         p.Status,
		"documentIds":    removed,
	})
	return nil
}

// PatientHistory returns the audit trail of a patient.
func (s *Service) PatientHistory(ctx context.Context, id uint) ([]models.AuditLog, error) {
	if _, err := s.store.GetPatient(ctx, id); err != nil {
		return nil, notFound("Patient", "get patient", err)
	}
	entries, err := s.audit.History(ctx, models.EntityPatient, id)
	if err != nil {
		return nil, apperrors.Internal("patient history", err)
	}
	return entries, nil
}

func (s *Service) checkGuarantor(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.store.GetGuarantor(ctx, *id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.Validation("guarantorId", "Guarantor does not exist")
		}
		return apperrors.Internal("get guarantor", err)
	}
	return nil
}
