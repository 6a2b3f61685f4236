package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the closed set accepted for doctor records
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Doctor is the bookable resource. Appointments reference it, they never own it.
type Doctor struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName         string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName          string    `gorm:"type:varchar(100);not null;index" json:"last_name"`
	Qualification     string    `gorm:"type:varchar(255)" json:"qualification,omitempty"`
	YearsOfExperience int       `gorm:"not null;default:0" json:"years_of_experience"`
	Speciality        string    `gorm:"type:varchar(100);index" json:"speciality,omitempty"`
	ContactNum        int64     `gorm:"column:contact_num" json:"contact_num,omitempty"`
	Email             string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Gender            Gender    `gorm:"type:varchar(10);not null" json:"gender"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d Doctor) HasID() bool {
	return d.ID != uuid.Nil
}

func (d Doctor) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}
