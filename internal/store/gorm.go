package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"medflow-backend/internal/models"
)

// GormStore implements Store over a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) ListGuarantors(ctx context.Context) ([]models.Guarantor, error) {
	var guarantors []models.Guarantor
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&guarantors).Error; err != nil {
		return nil, fmt.Errorf("list guarantors: %w", err)
	}
	return guarantors, nil
}

type guarantorTotals struct {
	GuarantorID     uint
	PatientCount    int
	TotalFinancials int64
}

func (s *GormStore) ListGuarantorSummaries(ctx context.Context) ([]models.GuarantorSummary, error) {
	guarantors, err := s.ListGuarantors(ctx)
	if err != nil {
		return nil, err
	}

	var rows []guarantorTotals
	err = s.db.WithContext(ctx).Model(&models.Patient{}).
		Select("guarantor_id, COUNT(*) AS patient_count, COALESCE(SUM(total_cost), 0) AS total_financials").
		Where("guarantor_id IS NOT NULL").
		Group("guarantor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum guarantor totals: %w", err)
	}
	totals := make(map[uint]guarantorTotals, len(rows))
	for _, r := range rows {
		totals[r.GuarantorID] = r
	}

	out := make([]models.GuarantorSummary, 0, len(guarantors))
	for _, g := range guarantors {
		t := totals[g.ID]
		out = append(out, models.GuarantorSummary{Guarantor: g, PatientCount: t.PatientCount, TotalFinancials: t.TotalFinancials})
	}
	return out, nil
}

func (s *GormStore) GetGuarantor(ctx context.Context, id uint) (*models.Guarantor, error) {
	var g models.Guarantor
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, wrapLookup("get guarantor", err)
	}
	return &g, nil
}

func (s *GormStore) CreateGuarantor(ctx context.Context, g *models.Guarantor) error {
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create guarantor: %w", err)
	}
	return nil
}

func (s *GormStore) CountGuarantors(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Guarantor{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count guarantors: %w", err)
	}
	return n, nil
}

func (s *GormStore) ListPatients(ctx context.Context, filter PatientFilter) ([]models.Patient, error) {
	query := s.db.WithContext(ctx).Model(&models.Patient{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(passport_number) LIKE ?", like, like)
	}

	var patients []models.Patient
	if err := query.Order("created_at desc, id desc").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *GormStore) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	var p models.Patient
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrapLookup("get patient", err)
	}
	return &p, nil
}

func (s *GormStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *GormStore) SavePatient(ctx context.Context, p *models.Patient) error {
	// Select("*") forces zero values such as IsLocked=false to be written.
	res := s.db.WithContext(ctx).Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return fmt.Errorf("save patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeletePatient(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Patient{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListDocuments(ctx context.Context, patientID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("uploaded_at asc, id asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *GormStore) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var d models.Document
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, wrapLookup("get document", err)
	}
	return &d, nil
}

func (s *GormStore) CreateDocument(ctx context.Context, d *models.Document) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteDocument(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Document{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func (s *GormStore) ListAuditLogs(ctx context.Context, entityType string, entityID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapLookup("get user", err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func wrapLookup(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
