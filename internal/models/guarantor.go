package models

import "time"

// Guarantor is an organization sponsoring the treatment of one or more patients.
type Guarantor struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	ContactInfo *string   `json:"contactInfo"`
	Email       *string   `json:"email"`
	Address     *string   `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GuarantorSummary adds aggregate figures over the guarantor's patients.
type GuarantorSummary struct {
	Guarantor
	PatientCount    int   `json:"patientCount"`
	TotalFinancials int64 `json:"totalFinancials"`
}
