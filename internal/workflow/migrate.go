package workflow

import (
	"context"
	"fmt"
	"time"

	"medflow-backend/internal/models"
	"medflow-backend/internal/store"
)

// LegacyStatuses maps the seven-stage labels some deployments stored onto the
// canonical statuses.
var LegacyStatuses = map[string]models.Status{
	"In Progress":      models.StatusProcessing,
	"Paid Deposit":     models.StatusProcessing,
	"Finish Treatment": models.StatusTraveled,
	"Come Back":        models.StatusReturned,
	"Bill Collect":     models.StatusPaid,
}

// MigrationReport summarizes a status migration run.
type MigrationReport struct {
	Scanned   int
	Rewritten int
	Locked    int
	Unknown   map[string]int // Label -> number of patients left untouched
}

// MigrateStatuses rewrites every patient whose status is a legacy label. Rows
// that end up Paid are locked. With dryRun set nothing is written.
func MigrateStatuses(ctx context.Context, st store.Store, now time.Time, dryRun bool) (MigrationReport, error) {
	report := MigrationReport{Unknown: map[string]int{}}

	patients, err := st.ListPatients(ctx, store.PatientFilter{})
	if err != nil {
		return report, err
	}
	for _, p := range patients {
		report.Scanned++
		if _, ok := models.ParseStatus(string(p.Status)); ok {
			continue
		}
		target, ok := LegacyStatuses[string(p.Status)]
		if !ok {
			report.Unknown[string(p.Status)]++
			continue
		}

		p.Status = target
		if target.IsTerminal() && !p.IsLocked {
			p.IsLocked = true
			report.Locked++
		}
		p.UpdatedAt = now
		report.Rewritten++
		if dryRun {
			continue
		}
		if err := st.SavePatient(ctx, &p); err != nil {
			return report, fmt.Errorf("migrate patient %d: %w", p.ID, err)
		}
	}
	return report, nil
}
