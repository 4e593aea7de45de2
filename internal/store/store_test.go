package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medflow-backend/internal/database"
	"medflow-backend/internal/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return NewGormStore(db)
}

func newMemoryStore(t *testing.T) Store {
	return NewMemoryStore()
}

func strPtr(s string) *string { return &s }

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	impls := map[string]func(*testing.T) Store{
		"gorm":   newSQLiteStore,
		"memory": newMemoryStore,
	}
	for name, newStore := range impls {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func TestPatientRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g := &models.Guarantor{Name: "Red Crescent"}
		require.NoError(t, s.CreateGuarantor(ctx, g))
		require.NotZero(t, g.ID)

		p := &models.Patient{
			FullName:       "Jane Doe",
			PassportNumber: "X1",
			Destination:    strPtr("Istanbul"),
			GuarantorID:    &g.ID,
			Status:         models.StatusNew,
			TotalCost:      5000,
		}
		require.NoError(t, s.CreatePatient(ctx, p))
		require.NotZero(t, p.ID)

		got, err := s.GetPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", got.FullName)
		assert.Equal(t, "X1", got.PassportNumber)
		assert.Equal(t, "Istanbul", *got.Destination)
		assert.Equal(t, g.ID, *got.GuarantorID)
		assert.Equal(t, models.StatusNew, got.Status)
		assert.False(t, got.IsLocked)
		assert.Equal(t, int64(5000), got.TotalCost)

		docs, err := s.ListDocuments(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestSavePatientWritesZeroValues(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		p := &models.Patient{FullName: "A", PassportNumber: "P", Status: models.StatusPaid, IsLocked: true, TotalCost: 10}
		require.NoError(t, s.CreatePatient(ctx, p))

		p.IsLocked = false
		p.TotalCost = 0
		require.NoError(t, s.SavePatient(ctx, p))

		got, err := s.GetPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.IsLocked)
		assert.Zero(t, got.TotalCost)
		assert.Equal(t, models.StatusPaid, got.Status)
	})
}

func TestMissingRecords(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.GetPatient(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetGuarantor(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetDocument(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeletePatient(ctx, 999), ErrNotFound)
		assert.ErrorIs(t, s.DeleteDocument(ctx, 999), ErrNotFound)
		assert.ErrorIs(t, s.SavePatient(ctx, &models.Patient{ID: 999, FullName: "x", PassportNumber: "y", Status: models.StatusNew}), ErrNotFound)
	})
}

func TestListPatientsFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, p := range []models.Patient{
			{FullName: "Jane Doe", PassportNumber: "X1", Status: models.StatusNew},
			{FullName: "John Smith", PassportNumber: "AB123", Status: models.StatusPaid, IsLocked: true},
			{FullName: "Mary Jane", PassportNumber: "Q9", Status: models.StatusTraveled},
		} {
			p := p
			require.NoError(t, s.CreatePatient(ctx, &p))
		}

		all, err := s.ListPatients(ctx, PatientFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Mary Jane", all[0].FullName, "newest first")

		byName, err := s.ListPatients(ctx, PatientFilter{Search: "JANE"})
		require.NoError(t, err)
		assert.Len(t, byName, 2)

		byPassport, err := s.ListPatients(ctx, PatientFilter{Search: "ab1"})
		require.NoError(t, err)
		require.Len(t, byPassport, 1)
		assert.Equal(t, "John Smith", byPassport[0].FullName)

		byStatus, err := s.ListPatients(ctx, PatientFilter{Status: models.StatusPaid})
		require.NoError(t, err)
		require.Len(t, byStatus, 1)

		none, err := s.ListPatients(ctx, PatientFilter{Search: "jane", Status: models.StatusPaid})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestDocuments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		p := &models.Patient{FullName: "A", PassportNumber: "P", Status: models.StatusNew}
		require.NoError(t, s.CreatePatient(ctx, p))

		d := &models.Document{PatientID: p.ID, FileName: "scan.pdf", FilePath: "abc.pdf", FileType: "application/pdf"}
		require.NoError(t, s.CreateDocument(ctx, d))
		require.NotZero(t, d.ID)

		got, err := s.GetDocument(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "scan.pdf", got.FileName)
		assert.False(t, got.UploadedAt.IsZero())

		docs, err := s.ListDocuments(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(t, docs, 1)

		require.NoError(t, s.DeleteDocument(ctx, d.ID))
		docs, err = s.ListDocuments(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestAuditLogAppend(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		uid := uint(3)
		for _, action := range []string{models.ActionCreatePatient, models.ActionUpdatePatient} {
			e := &models.AuditLog{
				Action:     action,
				EntityID:   42,
				EntityType: models.EntityPatient,
				UserID:     &uid,
				Details:    datatypes.JSON(`{"status":"Paid"}`),
			}
			require.NoError(t, s.AppendAuditLog(ctx, e))
			require.NotZero(t, e.ID)
		}

		entries, err := s.ListAuditLogs(ctx, models.EntityPatient, 42)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.ActionCreatePatient, entries[0].Action)
		assert.Equal(t, models.ActionUpdatePatient, entries[1].Action)
		assert.JSONEq(t, `{"status":"Paid"}`, string(entries[1].Details))

		other, err := s.ListAuditLogs(ctx, models.EntityDocument, 42)
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := &models.User{Username: "admin", PasswordHash: "hash", Role: models.RoleAdmin}
		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.GetUserByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Equal(t, "hash", got.PasswordHash)

		err = s.CreateUser(ctx, &models.User{Username: "admin", PasswordHash: "other", Role: models.RoleEmployee})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestGuarantorCount(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		n, err := s.CountGuarantors(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, s.CreateGuarantor(ctx, &models.Guarantor{Name: "Ministry of Health"}))
		require.NoError(t, s.CreateGuarantor(ctx, &models.Guarantor{Name: "Private Insurance Co"}))

		n, err = s.CountGuarantors(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		list, err := s.ListGuarantors(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestGuarantorSummaries(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		moh := &models.Guarantor{Name: "Ministry of Health"}
		ins := &models.Guarantor{Name: "Private Insurance Co"}
		unused := &models.Guarantor{Name: "Unused"}
		for _, g := range []*models.Guarantor{moh, ins, unused} {
			require.NoError(t, s.CreateGuarantor(ctx, g))
		}
		for _, p := range []*models.Patient{
			{FullName: "A", PassportNumber: "1", Status: models.StatusNew, GuarantorID: &moh.ID, TotalCost: 1000},
			{FullName: "B", PassportNumber: "2", Status: models.StatusNew, GuarantorID: &moh.ID, TotalCost: 2500},
			{FullName: "C", PassportNumber: "3", Status: models.StatusNew, GuarantorID: &ins.ID, TotalCost: 700},
			{FullName: "D", PassportNumber: "4", Status: models.StatusNew, TotalCost: 99999},
		} {
			require.NoError(t, s.CreatePatient(ctx, p))
		}

		list, err := s.ListGuarantorSummaries(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		byName := map[string]models.GuarantorSummary{}
		for _, g := range list {
			byName[g.Name] = g
		}
		assert.Equal(t, 2, byName["Ministry of Health"].PatientCount)
		assert.Equal(t, int64(3500), byName["Ministry of Health"].TotalFinancials)
		assert.Equal(t, 1, byName["Private Insurance Co"].PatientCount)
		assert.Equal(t, int64(700), byName["Private Insurance Co"].TotalFinancials)
		assert.Zero(t, byName["Unused"].PatientCount)
		assert.Zero(t, byName["Unused"].TotalFinancials)
	})
}

func TestSavePatientClearsGuarantor(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g := &models.Guarantor{Name: "Red Crescent"}
		require.NoError(t, s.CreateGuarantor(ctx, g))
		p := &models.Patient{FullName: "A", PassportNumber: "1", Status: models.StatusNew, GuarantorID: &g.ID}
		require.NoError(t, s.CreatePatient(ctx, p))

		p.GuarantorID = nil
		require.NoError(t, s.SavePatient(ctx, p))
		got, err := s.GetPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got.GuarantorID)
	})
}
