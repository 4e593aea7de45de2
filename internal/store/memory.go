package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medflow-backend/internal/models"
	"medflow-backend/internal/utils"
)

// MemoryStore is an in-process Store used by tests and demos.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	nextID     uint
	guarantors map[uint]models.Guarantor
	patients   map[uint]models.Patient
	documents  map[uint]models.Document
	auditLogs  []models.AuditLog
	users      map[uint]models.User

	// FailAudit makes AppendAuditLog return this error when set.
	FailAudit error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		guarantors: make(map[uint]models.Guarantor),
		patients:   make(map[uint]models.Patient),
		documents:  make(map[uint]models.Document),
		users:      make(map[uint]models.User),
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) ListGuarantors(ctx context.Context) ([]models.Guarantor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Guarantor, 0, len(s.guarantors))
	for _, g := range s.guarantors {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListGuarantorSummaries(ctx context.Context) ([]models.GuarantorSummary, error) {
	guarantors, err := s.ListGuarantors(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	patients := make([]models.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		patients = append(patients, p)
	}
	s.mu.RUnlock()
	return utils.SummarizeGuarantors(guarantors, patients), nil
}

func (s *MemoryStore) GetGuarantor(ctx context.Context, id uint) (*models.Guarantor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guarantors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) CreateGuarantor(ctx context.Context, g *models.Guarantor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	g.CreatedAt = s.now()
	s.guarantors[g.ID] = *g
	return nil
}

func (s *MemoryStore) CountGuarantors(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.guarantors)), nil
}

func (s *MemoryStore) ListPatients(ctx context.Context, filter PatientFilter) ([]models.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Patient{}
	for _, p := range s.patients {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FullName), search) &&
			!strings.Contains(strings.ToLower(p.PassportNumber), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Status == "" {
		p.Status = models.StatusNew
	}
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryStore) SavePatient(ctx context.Context, p *models.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryStore) DeletePatient(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[id]; !ok {
		return ErrNotFound
	}
	delete(s.patients, id)
	return nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, patientID uint) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Document{}
	for _, d := range s.documents {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) CreateDocument(ctx context.Context, d *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	d.UploadedAt = s.now()
	s.documents[d.ID] = *d
	return nil
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

func (s *MemoryStore) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAudit != nil {
		return s.FailAudit
	}
	entry.ID = s.id()
	entry.CreatedAt = s.now()
	s.auditLogs = append(s.auditLogs, *entry)
	return nil
}

func (s *MemoryStore) ListAuditLogs(ctx context.Context, entityType string, entityID uint) ([]models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AuditLog{}
	for _, e := range s.auditLogs {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// AuditLogs returns every entry in append order.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.auditLogs...)
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.ID = s.id()
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}
