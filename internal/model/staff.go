package model

import (
	"database/sql/driver"
)

// Weekdays in calendar order, as rendered by the schedule picker.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Schedule maps a lowercase weekday name to "HH:MM" start times.
type Schedule map[string][]string

func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s)
}

func (s *Schedule) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// ScheduleDay is one entry of an ordered schedule.
type ScheduleDay struct {
	Day   string   `json:"day"`
	Times []string `json:"times"`
}

// Ordered lists the days in calendar order, skipping empty ones.
func (s Schedule) Ordered() []ScheduleDay {
	days := make([]ScheduleDay, 0, len(s))
	for _, day := range Weekdays {
		if times := s[day]; len(times) > 0 {
			days = append(days, ScheduleDay{Day: day, Times: times})
		}
	}
	return days
}

type Doctor struct {
	Base
	FirstName       string   `json:"first_name" db:"first_name"`
	LastName        string   `json:"last_name" db:"last_name"`
	Specialization  string   `json:"specialization" db:"specialization"`
	LicenseNumber   string   `json:"license_number" db:"license_number"`
	Email           *string  `json:"email,omitempty" db:"email"`
	Phone           *string  `json:"phone,omitempty" db:"phone"`
	ConsultationFee float64  `json:"consultation_fee" db:"consultation_fee"`
	IsActive        bool     `json:"is_active" db:"is_active"`
	ScheduleData    Schedule `json:"schedule_data" db:"schedule_data"`
}

func (d *Doctor) FullName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

type DoctorRequest struct {
	FirstName       string   `json:"first_name" binding:"required,max=100"`
	LastName        string   `json:"last_name" binding:"required,max=100"`
	Specialization  string   `json:"specialization" binding:"required,max=100"`
	LicenseNumber   string   `json:"license_number" binding:"required,max=50"`
	Email           *string  `json:"email" binding:"omitempty,email,max=255"`
	Phone           *string  `json:"phone" binding:"omitempty,max=20"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitnil,gte=0"`
	IsActive        *bool    `json:"is_active"`
}

type ScheduleRequest struct {
	ScheduleData map[string][]string `json:"schedule_data" binding:"required"`
}

type Nurse struct {
	Base
	FirstName     string  `json:"first_name" db:"first_name"`
	LastName      string  `json:"last_name" db:"last_name"`
	LicenseNumber string  `json:"license_number" db:"license_number"`
	Email         *string `json:"email,omitempty" db:"email"`
	Phone         *string `json:"phone,omitempty" db:"phone"`
	Department    *string `json:"department,omitempty" db:"department"`
	IsActive      bool    `json:"is_active" db:"is_active"`
}

type NurseRequest struct {
	FirstName     string  `json:"first_name" binding:"required,max=100"`
	LastName      string  `json:"last_name" binding:"required,max=100"`
	LicenseNumber string  `json:"license_number" binding:"required,max=50"`
	Email         *string `json:"email" binding:"omitempty,email,max=255"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Department    *string `json:"department" binding:"omitempty,max=100"`
	IsActive      *bool   `json:"is_active"`
}

type StaffFilters struct {
	Pagination
	Active *bool
	Search string
}
