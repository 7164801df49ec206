package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes,omitempty" db:"changes"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionPay    = "pay"
	AuditActionCancel = "cancel"
	AuditActionRefund = "refund"

	// Entity types
	AuditEntityPatient     = "patient"
	AuditEntityAppointment = "appointment"
	AuditEntityTransaction = "billing_transaction"
)

type AuditFilters struct {
	Pagination
	EntityType string
	EntityID   *uuid.UUID
	Action     string
}
