package models

import "time"

// Patient defines the structure for a medical-tourism case file.
type Patient struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FullName       string    `json:"fullName" gorm:"not null;index"`
	PassportNumber string    `json:"passportNumber" gorm:"not null;index"`
	MedicalReports *string   `json:"medicalReports"` // Free-text summary
	Destination    *string   `json:"destination"`
	GuarantorID    *uint     `json:"guarantorId" gorm:"index"` // Optional reference to Guarantor, not cascaded
	Status         Status    `json:"status" gorm:"not null;default:'New';index"`
	IsLocked       bool      `json:"isLocked" gorm:"default:false"`
	TotalCost      int64     `json:"totalCost" gorm:"default:0"`
	AmountPaid     int64     `json:"amountPaid" gorm:"default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PatientDetail is a patient together with its guarantor and documents.
type PatientDetail struct {
	Patient
	Guarantor   *Guarantor `json:"guarantor"`
	Outstanding int64      `json:"outstanding"`
	Documents   []Document `json:"documents"`
}
