package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	AppointmentGeneralConsultation    AppointmentType = "general_consultation"
	AppointmentFollowUp               AppointmentType = "follow_up"
	AppointmentEmergency              AppointmentType = "emergency"
	AppointmentCheckUp                AppointmentType = "check_up"
	AppointmentSpecialistConsultation AppointmentType = "specialist_consultation"
)

// Label is the human readable form used on billing lines.
func (t AppointmentType) Label() string {
	switch t {
	case AppointmentGeneralConsultation:
		return "General Consultation"
	case AppointmentFollowUp:
		return "Follow-up"
	case AppointmentEmergency:
		return "Emergency"
	case AppointmentCheckUp:
		return "Check-up"
	case AppointmentSpecialistConsultation:
		return "Specialist Consultation"
	}
	return string(t)
}

type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "pending"
	BillingStatusApproved  BillingStatus = "approved"
	BillingStatusCancelled BillingStatus = "cancelled"
	BillingStatusCompleted BillingStatus = "completed"
)

type AppointmentSource string

const (
	SourceOnline AppointmentSource = "online"
	SourceWalkIn AppointmentSource = "walk_in"
	SourcePhone  AppointmentSource = "phone"
)

type LabTest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Price float64 `json:"price" binding:"gte=0"`
}

// LabTests is stored as JSONB on the appointment row.
type LabTests []LabTest

func (l LabTests) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue(l)
}

func (l *LabTests) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type Appointment struct {
	Base
	PatientID       uuid.UUID         `json:"patient_id" db:"patient_id"`
	SpecialistID    *uuid.UUID        `json:"specialist_id,omitempty" db:"specialist_id"`
	AppointmentType AppointmentType   `json:"appointment_type" db:"appointment_type"`
	AppointmentDate Date              `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string            `json:"appointment_time" db:"appointment_time"`
	Price           float64           `json:"price" db:"price"`
	BillingStatus   BillingStatus     `json:"billing_status" db:"billing_status"`
	Source          AppointmentSource `json:"source" db:"source"`
	Notes           *string           `json:"notes,omitempty" db:"notes"`
	LabTests        LabTests          `json:"lab_tests" db:"lab_tests"`
}

// LabTotal is the sum of the lab test prices.
func (a *Appointment) LabTotal() float64 {
	var total float64
	for _, t := range a.LabTests {
		total += t.Price
	}
	return total
}

type AppointmentRequest struct {
	PatientID       string    `json:"patient_id" binding:"required,uuid"`
	SpecialistID    *string   `json:"specialist_id" binding:"omitempty,uuid"`
	AppointmentType string    `json:"appointment_type" binding:"required,oneof=general_consultation follow_up emergency check_up specialist_consultation"`
	AppointmentDate string    `json:"appointment_date" binding:"required,ymd"`
	AppointmentTime string    `json:"appointment_time" binding:"required,hhmm"`
	Price           *float64  `json:"price" binding:"omitnil,gte=0"`
	BillingStatus   string    `json:"billing_status" binding:"omitempty,oneof=pending approved cancelled completed"`
	Source          string    `json:"source" binding:"omitempty,oneof=online walk_in phone"`
	Notes           *string   `json:"notes" binding:"omitempty,max=1000"`
	LabTests        []LabTest `json:"lab_tests" binding:"omitempty,dive"`
}

type AppointmentStatusRequest struct {
	BillingStatus string `json:"billing_status" binding:"required,oneof=pending approved cancelled completed"`
}

type AppointmentFilters struct {
	Pagination
	PatientID     *uuid.UUID
	SpecialistID  *uuid.UUID
	BillingStatus BillingStatus
	Source        AppointmentSource
	DateFrom      *time.Time
	DateTo        *time.Time
}
