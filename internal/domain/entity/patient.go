package entity

import (
	"strings"
	"time"
)

// Patient represents a person who books appointments
type Patient struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName      string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string     `gorm:"type:varchar(100)" json:"last_name"`
	DateOfBirth    *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender         string     `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Phone          string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email          string     `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	MedicalHistory string     `gorm:"type:text" json:"medical_history,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// HasChronicConditions reports whether any medical history was recorded
func (p *Patient) HasChronicConditions() bool {
	return strings.TrimSpace(p.MedicalHistory) != ""
}
