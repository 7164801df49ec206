package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	PatientNo       string  `json:"patient_no" db:"patient_no"`
	FirstName       string  `json:"first_name" db:"first_name"`
	MiddleName      *string `json:"middle_name,omitempty" db:"middle_name"`
	LastName        string  `json:"last_name" db:"last_name"`
	Birthdate       *Date   `json:"birthdate,omitempty" db:"birthdate"`
	Sex             *string `json:"sex,omitempty" db:"sex"`
	Phone           *string `json:"phone,omitempty" db:"phone"`
	Email           *string `json:"email,omitempty" db:"email"`
	Address         *string `json:"address,omitempty" db:"address"`
	IsSeniorCitizen bool    `json:"is_senior_citizen" db:"is_senior_citizen"`
	SeniorCitizenID *string `json:"senior_citizen_id,omitempty" db:"senior_citizen_id"`
	HMOProvider     *string `json:"hmo_provider,omitempty" db:"hmo_provider"`
	HMOMemberID     *string `json:"hmo_member_id,omitempty" db:"hmo_member_id"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

type PatientRequest struct {
	FirstName       string  `json:"first_name" binding:"required,max=100"`
	MiddleName      *string `json:"middle_name" binding:"omitempty,max=100"`
	LastName        string  `json:"last_name" binding:"required,max=100"`
	Birthdate       *string `json:"birthdate" binding:"omitempty,ymd"`
	Sex             *string `json:"sex" binding:"omitempty,oneof=male female"`
	Phone           *string `json:"phone" binding:"omitempty,max=20"`
	Email           *string `json:"email" binding:"omitempty,email,max=255"`
	Address         *string `json:"address" binding:"omitempty,max=500"`
	IsSeniorCitizen bool    `json:"is_senior_citizen"`
	SeniorCitizenID *string `json:"senior_citizen_id" binding:"omitempty,max=50"`
	HMOProvider     *string `json:"hmo_provider" binding:"omitempty,max=100"`
	HMOMemberID     *string `json:"hmo_member_id" binding:"omitempty,max=50"`
}

type PatientFilters struct {
	Pagination
	Search        string
	SeniorCitizen *bool
}

// PatientRef is the subset of a patient other services need.
type PatientRef struct {
	ID              uuid.UUID `json:"id" db:"id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Email           *string   `json:"email,omitempty" db:"email"`
	IsSeniorCitizen bool      `json:"is_senior_citizen" db:"is_senior_citizen"`
	HMOProvider     *string   `json:"hmo_provider,omitempty" db:"hmo_provider"`
}
