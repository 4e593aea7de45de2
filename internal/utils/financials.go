package utils

import "medflow-backend/internal/models"

// SummarizeGuarantors attaches the number of patients and the sum of their
// total cost to each guarantor. Patients without a guarantor are ignored.
func SummarizeGuarantors(guarantors []models.Guarantor, patients []models.Patient) []models.GuarantorSummary {
	type totals struct {
		count int
		cost  int64
	}
	byGuarantor := make(map[uint]*totals, len(guarantors))
	for _, p := range patients {
		if p.GuarantorID == nil {
			continue
		}
		t, ok := byGuarantor[*p.GuarantorID]
		if !ok {
			t = &totals{}
			byGuarantor[*p.GuarantorID] = t
		}
		t.count++
		t.cost += p.TotalCost
	}

	out := make([]models.GuarantorSummary, 0, len(guarantors))
	for _, g := range guarantors {
		s := models.GuarantorSummary{Guarantor: g}
		if t, ok := byGuarantor[g.ID]; ok {
			s.PatientCount = t.count
			s.TotalFinancials = t.cost
		}
		out = append(out, s)
	}
	return out
}

// Outstanding returns how much of the patient's total cost is still unpaid.
// Overpayment yields zero.
func Outstanding(p models.Patient) int64 {
	if p.AmountPaid >= p.TotalCost {
		return 0
	}
	return p.TotalCost - p.AmountPaid
}
