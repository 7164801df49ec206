package model

import (
	"github.com/google/uuid"
)

type VisitStatus string

const (
	VisitStatusActive     VisitStatus = "active"
	VisitStatusCompleted  VisitStatus = "completed"
	VisitStatusDischarged VisitStatus = "discharged"
)

type Visit struct {
	Base
	PatientID        uuid.UUID   `json:"patient_id" db:"patient_id"`
	AppointmentID    *uuid.UUID  `json:"appointment_id,omitempty" db:"appointment_id"`
	DoctorID         *uuid.UUID  `json:"doctor_id,omitempty" db:"doctor_id"`
	NurseID          *uuid.UUID  `json:"nurse_id,omitempty" db:"nurse_id"`
	VisitDate        Date        `json:"visit_date" db:"visit_date"`
	WeightKg         *float64    `json:"weight_kg,omitempty" db:"weight_kg"`
	HeightCm         *float64    `json:"height_cm,omitempty" db:"height_cm"`
	TemperatureC     *float64    `json:"temperature_c,omitempty" db:"temperature_c"`
	BloodPressure    *string     `json:"blood_pressure,omitempty" db:"blood_pressure"`
	HeartRate        *int        `json:"heart_rate,omitempty" db:"heart_rate"`
	RespiratoryRate  *int        `json:"respiratory_rate,omitempty" db:"respiratory_rate"`
	OxygenSaturation *int        `json:"oxygen_saturation,omitempty" db:"oxygen_saturation"`
	ChiefComplaint   *string     `json:"chief_complaint,omitempty" db:"chief_complaint"`
	Diagnosis        *string     `json:"diagnosis,omitempty" db:"diagnosis"`
	Notes            *string     `json:"notes,omitempty" db:"notes"`
	Status           VisitStatus `json:"status" db:"status"`
}

// VisitRequest carries the acceptance rules for a visit record. Nullable
// measurements are pointers so an absent value skips its range check.
type VisitRequest struct {
	PatientID        string   `json:"patient_id" binding:"required,uuid"`
	AppointmentID    *string  `json:"appointment_id" binding:"omitempty,uuid"`
	DoctorID         *string  `json:"doctor_id" binding:"omitempty,uuid"`
	NurseID          *string  `json:"nurse_id" binding:"omitempty,uuid"`
	VisitDate        string   `json:"visit_date" binding:"required,ymd"`
	WeightKg         *float64 `json:"weight_kg" binding:"omitnil,gte=0,lte=500"`
	HeightCm         *float64 `json:"height_cm" binding:"omitnil,gte=0,lte=300"`
	TemperatureC     *float64 `json:"temperature_c" binding:"omitnil,gte=30,lte=45"`
	BloodPressure    *string  `json:"blood_pressure" binding:"omitempty,blood_pressure"`
	HeartRate        *int     `json:"heart_rate" binding:"omitnil,gte=0,lte=300"`
	RespiratoryRate  *int     `json:"respiratory_rate" binding:"omitnil,gte=0,lte=100"`
	OxygenSaturation *int     `json:"oxygen_saturation" binding:"omitnil,gte=0,lte=100"`
	ChiefComplaint   *string  `json:"chief_complaint" binding:"omitempty,max=1000"`
	Diagnosis        *string  `json:"diagnosis" binding:"omitempty,max=2000"`
	Notes            *string  `json:"notes" binding:"omitempty,max=2000"`
	Status           string   `json:"status" binding:"required,oneof=active completed discharged"`
}

type VisitFilters struct {
	Pagination
	PatientID     *uuid.UUID
	AppointmentID *uuid.UUID
	Status        VisitStatus
}
