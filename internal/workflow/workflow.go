// Package workflow owns the patient status rules: which statuses exist, how a
// requested update is merged into a patient, and when a file becomes locked.
package workflow

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/models"
	"medflow-backend/internal/utils"
)

// PatientUpdate is a partial patient update. Nil fields are left unchanged;
// guarantorId can be cleared with an explicit null.
type PatientUpdate struct {
	FullName       *string    `json:"fullName"`
	PassportNumber *string    `json:"passportNumber"`
	MedicalReports *string    `json:"medicalReports"`
	Destination    *string    `json:"destination"`
	GuarantorID    NullableID `json:"guarantorId"`
	Status         *string    `json:"status"`
	IsLocked       *bool      `json:"isLocked"`
	TotalCost      *int64     `json:"totalCost"`
	AmountPaid     *int64     `json:"amountPaid"`
}

// NullableID tells an absent JSON field apart from an explicit null. Set is
// true whenever the field was present; a null leaves Value nil.
type NullableID struct {
	Set   bool
	Value *uint
}

// SomeID returns a NullableID holding id.
func SomeID(id uint) NullableID {
	return NullableID{Set: true, Value: &id}
}

// NullID returns a NullableID that clears the reference.
func NullID() NullableID {
	return NullableID{Set: true}
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Value = nil
	if string(b) == "null" {
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// NewPatient is the input for creating a patient. The lock flag cannot be set
// on creation.
type NewPatient struct {
	FullName       string  `json:"fullName" binding:"required"`
	PassportNumber string  `json:"passportNumber" binding:"required"`
	MedicalReports *string `json:"medicalReports"`
	Destination    *string `json:"destination"`
	GuarantorID    *uint   `json:"guarantorId"`
	Status         string  `json:"status"`
	TotalCost      int64   `json:"totalCost" binding:"gte=0"`
	AmountPaid     int64   `json:"amountPaid" binding:"gte=0"`
}

// Changes maps JSON field names to the values an update applied.
type Changes map[string]any

// RequiredOperations lists the access checks an update needs against the
// current record. Setting isLocked to its current value is not a toggle.
func RequiredOperations(existing models.Patient, u PatientUpdate) []access.Operation {
	ops := []access.Operation{access.OpUpdateFields}
	if u.IsLocked != nil && *u.IsLocked != existing.IsLocked {
		ops = append(ops, access.OpToggleLock)
	}
	return ops
}

// ParseStatus validates a requested status string.
func ParseStatus(s string) (models.Status, error) {
	st, ok := models.ParseStatus(strings.TrimSpace(s))
	if !ok {
		return "", apperrors.Validation("status", "Invalid status "+strconv.Quote(s)+"; expected one of "+statusList())
	}
	return st, nil
}

// Build validates creation input and returns the patient to insert.
func Build(in NewPatient, now time.Time) (models.Patient, error) {
	fullName, err := PlainText("fullName", in.FullName)
	if err != nil {
		return models.Patient{}, err
	}
	passport, err := PlainText("passportNumber", in.PassportNumber)
	if err != nil {
		return models.Patient{}, err
	}
	destination, err := PlainOptional("destination", in.Destination)
	if err != nil {
		return models.Patient{}, err
	}
	p := models.Patient{
		FullName:       fullName,
		PassportNumber: passport,
		MedicalReports: utils.KeepOptional(in.MedicalReports),
		Destination:    destination,
		GuarantorID:    in.GuarantorID,
		Status:         models.StatusNew,
		TotalCost:      in.TotalCost,
		AmountPaid:     in.AmountPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.FullName == "" {
		return models.Patient{}, apperrors.Validation("fullName", "Full name is required")
	}
	if p.PassportNumber == "" {
		return models.Patient{}, apperrors.Validation("passportNumber", "Passport number is required")
	}
	if err := checkAmounts(p.TotalCost, p.AmountPaid); err != nil {
		return models.Patient{}, err
	}
	if in.Status != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return models.Patient{}, err
		}
		p.Status = st
	}
	if p.Status.IsTerminal() {
		p.IsLocked = true
	}
	return p, nil
}

// Apply merges u into existing and returns the record to persist together with
// the applied changes. Moving a file into a terminal status locks it, whatever
// the same request says about isLocked. Once there, an unlock is honoured and
// re-sending the same status does not lock it again.
func Apply(existing models.Patient, u PatientUpdate, now time.Time) (models.Patient, Changes, error) {
	next := existing
	changes := Changes{}

	if u.FullName != nil {
		v, err := PlainText("fullName", *u.FullName)
		if err != nil {
			return existing, nil, err
		}
		if v == "" {
			return existing, nil, apperrors.Validation("fullName", "Full name cannot be empty")
		}
		next.FullName = v
		changes["fullName"] = v
	}
	if u.PassportNumber != nil {
		v, err := PlainText("passportNumber", *u.PassportNumber)
		if err != nil {
			return existing, nil, err
		}
		if v == "" {
			return existing, nil, apperrors.Validation("passportNumber", "Passport number cannot be empty")
		}
		next.PassportNumber = v
		changes["passportNumber"] = v
	}
	if u.MedicalReports != nil {
		next.MedicalReports = utils.KeepOptional(u.MedicalReports)
		changes["medicalReports"] = next.MedicalReports
	}
	if u.Destination != nil {
		v, err := PlainOptional("destination", u.Destination)
		if err != nil {
			return existing, nil, err
		}
		next.Destination = v
		changes["destination"] = next.Destination
	}
	if u.GuarantorID.Set {
		if u.GuarantorID.Value == nil {
			next.GuarantorID = nil
			changes["guarantorId"] = nil
		} else {
			id := *u.GuarantorID.Value
			next.GuarantorID = &id
			changes["guarantorId"] = id
		}
	}
	if u.TotalCost != nil {
		next.TotalCost = *u.TotalCost
		changes["totalCost"] = next.TotalCost
	}
	if u.AmountPaid != nil {
		next.AmountPaid = *u.AmountPaid
		changes["amountPaid"] = next.AmountPaid
	}
	if err := checkAmounts(next.TotalCost, next.AmountPaid); err != nil {
		return existing, nil, err
	}
	if u.Status != nil {
		st, err := ParseStatus(*u.Status)
		if err != nil {
			return existing, nil, err
		}
		next.Status = st
		changes["status"] = st
	}
	if u.IsLocked != nil {
		next.IsLocked = *u.IsLocked
	}
	if next.Status.IsTerminal() && next.Status != existing.Status {
		next.IsLocked = true
	}
	if next.IsLocked != existing.IsLocked || u.IsLocked != nil {
		changes["isLocked"] = next.IsLocked
	}

	next.UpdatedAt = now
	return next, changes, nil
}

// PlainText trims s and rejects HTML markup. Entities are kept as sent.
func PlainText(field, s string) (string, error) {
	v := strings.TrimSpace(s)
	if utils.HasMarkup(v) {
		return "", apperrors.Validation(field, field+" must not contain markup")
	}
	return v, nil
}

// PlainOptional is PlainText for optional fields. Blank values become nil.
func PlainOptional(field string, s *string) (*string, error) {
	v := utils.TrimOptional(s)
	if v != nil && utils.HasMarkup(*v) {
		return nil, apperrors.Validation(field, field+" must not contain markup")
	}
	return v, nil
}

func checkAmounts(total, paid int64) error {
	if total < 0 {
		return apperrors.Validation("totalCost", "Total cost cannot be negative")
	}
	if paid < 0 {
		return apperrors.Validation("amountPaid", "Amount paid cannot be negative")
	}
	return nil
}

func statusList() string {
	names := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
