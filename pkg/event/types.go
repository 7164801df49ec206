package event

import (
	"context"
	"fmt"
	"strings"
)

type EventType string

const (
	PatientCreate     EventType = "PATIENT_CREATE"
	PatientUpdate     EventType = "PATIENT_UPDATE"
	PatientDelete     EventType = "PATIENT_DELETE"
	AppointmentCreate EventType = "APPOINTMENT_CREATE"
	AppointmentUpdate EventType = "APPOINTMENT_UPDATE"
	AppointmentStatus EventType = "APPOINTMENT_STATUS"
	AppointmentDelete EventType = "APPOINTMENT_DELETE"
	BillingCreate     EventType = "BILLING_CREATE"
	BillingUpdate     EventType = "BILLING_UPDATE"
	BillingDelete     EventType = "BILLING_DELETE"
	BillingPaid       EventType = "BILLING_PAID"
	BillingCancel     EventType = "BILLING_CANCEL"
	BillingRefund     EventType = "BILLING_REFUND"
	DoctorSchedule    EventType = "DOCTOR_SCHEDULE"
	VisitCreate       EventType = "VISIT_CREATE"
	VisitUpdate       EventType = "VISIT_UPDATE"
)

// Name builds the event type for a resource/operation pair, e.g. BILLING_PAID.
func Name(resource, operation string) EventType {
	return EventType(fmt.Sprintf("%s_%s", strings.ToUpper(resource), strings.ToUpper(operation)))
}

// EventContext is stored on the gin context under ContextKey. Handlers fill
// NewData once the operation succeeded.
type EventContext struct {
	Resource   string
	Operation  string
	OldData    interface{}
	NewData    interface{}
	Additional map[string]interface{}
}

// Payload is what ends up in the outbox row.
type Payload struct {
	Resource   string                 `json:"resource"`
	Operation  string                 `json:"operation"`
	Data       interface{}            `json:"data"`
	Previous   interface{}            `json:"previous,omitempty"`
	Additional map[string]interface{} `json:"additional,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// Recorder persists events, normally into the outbox table.
type Recorder interface {
	Record(ctx context.Context, eventType EventType, payload []byte) error
}
