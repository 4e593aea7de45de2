package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
	"medflow-backend/internal/utils"
)

// UploadDocument stores content on disk and attaches it to the patient. The
// file is written before the document row; it is removed again if the row
// cannot be created.
func (s *Service) UploadDocument(ctx context.Context, actor access.Actor, patientID uint, fileName, fileType string, content io.Reader) (*models.Document, error) {
	unlock := s.locks.Lock(patientID)
	defer unlock()

	p, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		err = notFound("Patient", "get patient", err)
		s.outcome(access.OpUploadDocument, err)
		return nil, err
	}
	if err := s.authorize(actor, *p, access.OpUploadDocument); err != nil {
		return nil, err
	}

	doc, err := s.storeDocument(ctx, patientID, fileName, fileType, content)
	s.outcome(access.OpUploadDocument, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, models.ActionUploadDocument, models.EntityDocument, doc.ID, map[string]any{
		"patientId": patientID,
		"fileName":  doc.FileName,
		"fileType":  doc.FileType,
	})
	return doc, nil
}

func (s *Service) storeDocument(ctx context.Context, patientID uint, fileName, fileType string, content io.Reader) (*models.Document, error) {
	name := strings.TrimSpace(filepath.Base(fileName))
	if name == "" || name == "." {
		return nil, apperrors.Validation("file", "No file uploaded")
	}
	if fileType == "" {
		fileType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	stored, _, err := s.files.Save(name, content)
	if err != nil {
		if errors.Is(err, utils.ErrFileTooLarge) {
			return nil, apperrors.Validation("file", "File is too large")
		}
		return nil, apperrors.Internal("store file", err)
	}

	doc := &models.Document{
		PatientID: patientID,
		FileName:  name,
		FilePath:  stored,
		FileType:  fileType,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		if rmErr := s.files.Remove(stored); rmErr != nil {
			s.log.WithError(rmErr).WithField("file", stored).Warn("failed to remove orphaned upload")
		}
		return nil, apperrors.Internal("create document", err)
	}
	return doc, nil
}

// DeleteDocument removes the document row and then, best effort, its file.
func (s *Service) DeleteDocument(ctx context.Context, actor access.Actor, id uint) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		err = notFound("Document", "get document", err)
		s.outcome(access.OpDeleteDocument, err)
		return err
	}

	unlock := s.locks.Lock(doc.PatientID)
	defer unlock()

	// A document whose patient is gone is treated as unlocked.
	owner := models.Patient{ID: doc.PatientID}
	p, err := s.store.GetPatient(ctx, doc.PatientID)
	switch {
	case err == nil:
		owner = *p
	case !errors.Is(err, store.ErrNotFound):
		err = apperrors.Internal("get patient", err)
		s.outcome(access.OpDeleteDocument, err)
		return err
	}
	if err := s.authorize(actor, owner, access.OpDeleteDocument); err != nil {
		return err
	}

	err = s.removeDocument(ctx, actor, *doc)
	s.outcome(access.OpDeleteDocument, err)
	return err
}

// removeDocument deletes one document and audits it. The caller has already
// passed the access gate and holds the patient lock.
func (s *Service) removeDocument(ctx context.Context, actor access.Actor, doc models.Document) error {
	if err := s.store.DeleteDocument(ctx, doc.ID); err != nil {
		return notFound("Document", "delete document", err)
	}
	if err := s.files.Remove(doc.FilePath); err != nil {
		s.log.WithError(err).WithField("file", doc.FilePath).Warn("failed to delete document file")
	}
	s.record(ctx, actor, models.ActionDeleteDocument, models.EntityDocument, doc.ID, map[string]any{
		"patientId": doc.PatientID,
		"fileName":  doc.FileName,
	})
	return nil
}
