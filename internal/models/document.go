package models

import "time"

// Document defines an uploaded file attached to a patient.
type Document struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PatientID  uint      `json:"patientId" gorm:"not null;index"`
	FileName   string    `json:"fileName" gorm:"not null"` // Original client file name
	FilePath   string    `json:"filePath" gorm:"not null"` // Public path, "uploads/<stored name>"
	FileType   string    `json:"fileType" gorm:"not null"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
}
