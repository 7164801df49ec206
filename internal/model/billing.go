package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/pkg/billing"
)

type TransactionStatus string

const (
	TransactionDraft     TransactionStatus = "draft"
	TransactionPending   TransactionStatus = "pending"
	TransactionPaid      TransactionStatus = "paid"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionRefunded  TransactionStatus = "refunded"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionDraft:   {TransactionPending, TransactionPaid, TransactionCancelled},
	TransactionPending: {TransactionPaid, TransactionCancelled},
	TransactionPaid:    {TransactionRefunded},
}

// CanTransition reports whether a transaction may move from s to next.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether items and amounts may still change.
func (s TransactionStatus) Editable() bool {
	return s == TransactionDraft || s == TransactionPending
}

// Deletable reports whether the row may be removed.
func (s TransactionStatus) Deletable() bool {
	return s.Editable() || s == TransactionCancelled
}

// Active transactions hold their appointments.
func (s TransactionStatus) Active() bool {
	return s != TransactionCancelled && s != TransactionRefunded
}

type BillingItem struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	TransactionID uuid.UUID        `json:"-" db:"transaction_id"`
	ItemType      billing.ItemType `json:"item_type" db:"item_type"`
	ItemName      string           `json:"item_name" db:"item_name"`
	Quantity      int              `json:"quantity" db:"quantity"`
	UnitPrice     float64          `json:"unit_price" db:"unit_price"`
	TotalPrice    float64          `json:"total_price" db:"total_price"`
	Position      int              `json:"-" db:"position"`
}

type BillingTransaction struct {
	Base
	TransactionCode    string                `json:"transaction_code" db:"transaction_code"`
	PatientID          uuid.UUID             `json:"patient_id" db:"patient_id"`
	DoctorID           *uuid.UUID            `json:"doctor_id,omitempty" db:"doctor_id"`
	PaymentMethod      billing.PaymentMethod `json:"payment_method" db:"payment_method"`
	HMOProvider        *string               `json:"hmo_provider,omitempty" db:"hmo_provider"`
	HMOReference       *string               `json:"hmo_reference,omitempty" db:"hmo_reference"`
	Items              []BillingItem         `json:"items" db:"-"`
	DiscountAmount     float64               `json:"discount_amount" db:"discount_amount"`
	DiscountPercentage float64               `json:"discount_percentage" db:"discount_percentage"`
	IsSeniorCitizen    bool                  `json:"is_senior_citizen" db:"is_senior_citizen"`
	SeniorDiscount     float64               `json:"senior_discount" db:"senior_discount"`
	Subtotal           float64               `json:"subtotal" db:"subtotal"`
	TotalAmount        float64               `json:"total_amount" db:"total_amount"`
	AmountPaid         float64               `json:"amount_paid" db:"amount_paid"`
	ChangeAmount       float64               `json:"change_amount" db:"change_amount"`
	Balance            float64               `json:"balance" db:"balance"`
	Status             TransactionStatus     `json:"status" db:"status"`
	Notes              *string               `json:"notes,omitempty" db:"notes"`
	AppointmentIDs     UUIDs                 `json:"appointment_ids" db:"appointment_ids"`
	TransactionDate    Date                  `json:"transaction_date" db:"transaction_date"`
	PaidAt             *time.Time            `json:"paid_at,omitempty" db:"paid_at"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty" db:"cancelled_at"`
	RefundedAt         *time.Time            `json:"refunded_at,omitempty" db:"refunded_at"`
	StatusReason       *string               `json:"status_reason,omitempty" db:"status_reason"`
}

// Input rebuilds the calculator input from the stored transaction.
func (t *BillingTransaction) Input() billing.Input {
	items := make([]billing.Item, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, billing.Item{
			Type:      it.ItemType,
			Name:      it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return billing.Input{
		Items:              items,
		DiscountAmount:     t.DiscountAmount,
		DiscountPercentage: t.DiscountPercentage,
		SeniorCitizen:      t.IsSeniorCitizen,
		PaymentMethod:      t.PaymentMethod,
		AmountPaid:         t.AmountPaid,
	}
}

// Apply copies calculated amounts and line totals onto the transaction.
func (t *BillingTransaction) Apply(totals billing.Totals) {
	items := make([]BillingItem, 0, len(totals.Lines))
	for i, line := range totals.Lines {
		items = append(items, BillingItem{
			ItemType:   line.Type,
			ItemName:   line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Position:   i,
		})
	}
	t.Items = items
	t.Subtotal = totals.Subtotal
	if t.DiscountPercentage > 0 {
		t.DiscountAmount = totals.RegularDiscount
	}
	t.SeniorDiscount = totals.SeniorDiscount
	t.TotalAmount = totals.FinalTotal
	t.AmountPaid = totals.AmountPaid
	t.ChangeAmount = totals.Change
	t.Balance = totals.Balance
}

type TransactionRequest struct {
	PatientID          string         `json:"patient_id" binding:"required,uuid"`
	DoctorID           *string        `json:"doctor_id" binding:"omitempty,uuid"`
	PaymentMethod      string         `json:"payment_method" binding:"required,oneof=cash card hmo bank_transfer"`
	HMOProvider        *string        `json:"hmo_provider" binding:"omitempty,max=100"`
	HMOReference       *string        `json:"hmo_reference" binding:"omitempty,max=100"`
	Items              []billing.Item `json:"items" binding:"required,min=1,dive"`
	DiscountAmount     float64        `json:"discount_amount" binding:"gte=0"`
	DiscountPercentage float64        `json:"discount_percentage" binding:"gte=0,lte=100"`
	IsSeniorCitizen    *bool          `json:"is_senior_citizen"`
	AmountPaid         float64        `json:"amount_paid" binding:"gte=0"`
	Status             string         `json:"status" binding:"omitempty,oneof=draft pending"`
	Notes              *string        `json:"notes" binding:"omitempty,max=1000"`
	TransactionDate    string         `json:"transaction_date" binding:"omitempty,ymd"`
}

type FromAppointmentsRequest struct {
	AppointmentIDs     []string `json:"appointment_ids" binding:"required,min=1,dive,uuid"`
	DoctorID           *string  `json:"doctor_id" binding:"omitempty,uuid"`
	PaymentMethod      string   `json:"payment_method" binding:"required,oneof=cash card hmo bank_transfer"`
	HMOProvider        *string  `json:"hmo_provider" binding:"omitempty,max=100"`
	HMOReference       *string  `json:"hmo_reference" binding:"omitempty,max=100"`
	DiscountAmount     float64  `json:"discount_amount" binding:"gte=0"`
	DiscountPercentage float64  `json:"discount_percentage" binding:"gte=0,lte=100"`
	IsSeniorCitizen    *bool    `json:"is_senior_citizen"`
	Notes              *string  `json:"notes" binding:"omitempty,max=1000"`
}

type MarkPaidRequest struct {
	AmountPaid    float64 `json:"amount_paid" binding:"gte=0"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,oneof=cash card hmo bank_transfer"`
	HMOReference  *string `json:"hmo_reference" binding:"omitempty,max=100"`
}

type StatusReasonRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type TransactionFilters struct {
	Pagination
	PatientID     *uuid.UUID
	Status        TransactionStatus
	PaymentMethod billing.PaymentMethod
	DateFrom      *time.Time
	DateTo        *time.Time
}
