package models

import "time"

// User is a staff account able to sign in.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-"`
	Email        *string   `json:"email" gorm:"uniqueIndex"`
	Role         Role      `json:"role" gorm:"not null;default:'employee'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
