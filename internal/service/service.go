// Package service implements the case operations on top of the store: access
// checks, the status workflow, document files and the audit trail.
package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/audit"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
)

// FileStorage keeps document blobs. utils.FileStore is the production implementation.
type FileStorage interface {
	// Save returns the public path of the stored blob.
	Save(originalName string, r io.Reader) (string, int64, error)
	Remove(path string) error
}

// Service is the case-management API used by the HTTP handlers and the CLI.
type Service struct {
	store   store.Store
	audit   *audit.Recorder
	files   FileStorage
	log     *logger.Logger
	metrics *metrics.Metrics
	locks   *keyedMutex
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, files FileStorage, log *logger.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   st,
		audit:   audit.NewRecorder(st),
		files:   files,
		log:     log,
		metrics: m,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// authorize runs the access gate for every operation and records denials.
func (s *Service) authorize(actor access.Actor, p models.Patient, ops ...access.Operation) error {
	for _, op := range ops {
		if !access.CanMutate(actor, p, op) {
			s.metrics.Mutation(string(op), metrics.OutcomeForbidden)
			s.log.WithUserID(actor.ID).
				WithField("patient_id", p.ID).
				WithField("operation", op).
				Info("mutation denied")
			if !actor.Authenticated() {
				return apperrors.Unauthorized("Unauthorized")
			}
			return apperrors.Forbidden(access.DenialMessage(op))
		}
	}
	return nil
}

// record appends an audit entry. A failure is logged and counted but never
// undoes the mutation that already succeeded.
func (s *Service) record(ctx context.Context, actor access.Actor, action, entityType string, entityID uint, details any) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.audit.Record(ctx, action, entityType, entityID, actor.ID, details); err != nil {
		s.metrics.AuditFailure()
		s.log.WithComponent("audit").
			WithError(err).
			WithField("action", action).
			WithField("entity_type", entityType).
			WithField("entity_id", entityID).
			WithField("user_id", actor.ID).
			Warn("audit entry not written, mutation kept")
	}
}

// outcome counts the result of a mutation attempt.
func (s *Service) outcome(op access.Operation, err error) {
	if err == nil {
		s.metrics.Mutation(string(op), metrics.OutcomeOK)
		return
	}
	// Denials are counted by authorize.
	switch apperrors.HTTPStatus(err) {
	case http.StatusBadRequest, http.StatusNotFound:
		s.metrics.Mutation(string(op), metrics.OutcomeInvalid)
	case http.StatusInternalServerError:
		s.metrics.Mutation(string(op), metrics.OutcomeError)
	}
}

func notFound(resource, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Internal(op, err)
}
