package entity

import "time"

// DefaultConsultationMinutes is used when a doctor has no consultation duration set
const DefaultConsultationMinutes = 30

// MaxConsultationMinutes bounds any appointment or slot length, availability windows never exceed a day
const MaxConsultationMinutes = 24 * 60

// Doctor represents a practitioner who can be booked
type Doctor struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	HospitalID           *uint     `gorm:"index" json:"hospital_id,omitempty"`
	FirstName            string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName             string    `gorm:"type:varchar(100)" json:"last_name"`
	Specialization       string    `gorm:"type:varchar(100);index" json:"specialization"`
	Phone                string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email                string    `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	ConsultationDuration int       `gorm:"not null;default:30" json:"consultation_duration"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Hospital       *Hospital            `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	Availabilities []DoctorAvailability `gorm:"foreignKey:DoctorID" json:"availabilities,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// ConsultationMinutes returns the consultation length, falling back to the default
func (d *Doctor) ConsultationMinutes() int {
	if d.ConsultationDuration <= 0 {
		return DefaultConsultationMinutes
	}
	return d.ConsultationDuration
}
