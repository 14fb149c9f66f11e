package entity

import "time"

// Hospital is a facility where appointments take place
type Hospital struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	City      string    `gorm:"type:varchar(100)" json:"city,omitempty"`
	State     string    `gorm:"type:varchar(50)" json:"state,omitempty"`
	ZipCode   string    `gorm:"type:varchar(20)" json:"zip_code,omitempty"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email     string    `gorm:"type:varchar(100)" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Hospital) TableName() string {
	return "hospitals"
}
