// Package billing holds the discount and total arithmetic shared by every
// billing path: previews, manual transactions and transactions created from
// appointments.
package billing

import (
	"fmt"
	"math"
	"strings"
)

// SeniorDiscountRate is the statutory senior citizen discount on consultations.
const SeniorDiscountRate = 0.20

type ItemType string

const (
	ItemConsultation ItemType = "consultation"
	ItemLaboratory   ItemType = "laboratory"
	ItemProcedure    ItemType = "procedure"
	ItemMedicine     ItemType = "medicine"
	ItemOther        ItemType = "other"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemConsultation, ItemLaboratory, ItemProcedure, ItemMedicine, ItemOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentHMO          PaymentMethod = "hmo"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentHMO, PaymentBankTransfer:
		return true
	}
	return false
}

// Item is a single billable line.
type Item struct {
	Type      ItemType `json:"item_type" binding:"required,oneof=consultation laboratory procedure medicine other"`
	Name      string   `json:"item_name" binding:"required,max=255"`
	Quantity  int      `json:"quantity" binding:"min=1"`
	UnitPrice float64  `json:"unit_price" binding:"gte=0"`
}

// Total is quantity times unit price.
func (i Item) Total() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

type Input struct {
	Items              []Item        `json:"items" binding:"dive"`
	DiscountAmount     float64       `json:"discount_amount" binding:"gte=0"`
	DiscountPercentage float64       `json:"discount_percentage" binding:"gte=0,lte=100"`
	SeniorCitizen      bool          `json:"is_senior_citizen"`
	PaymentMethod      PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cash card hmo bank_transfer"`
	AmountPaid         float64       `json:"amount_paid" binding:"gte=0"`
}

type LineTotal struct {
	Item
	TotalPrice float64 `json:"total_price"`
}

type Totals struct {
	Lines           []LineTotal `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	RegularDiscount float64     `json:"discount_amount"`
	SeniorDiscount  float64     `json:"senior_discount"`
	FinalTotal      float64     `json:"total_amount"`
	AmountPaid      float64     `json:"amount_paid"`
	Change          float64     `json:"change_amount"`
	Balance         float64     `json:"balance"`
}

// ValidationError maps field paths to messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
	}
	return "invalid billing input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Validate checks the input constraints without computing anything.
func Validate(in Input) error {
	verr := &ValidationError{}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			verr.add(prefix+".item_name", "item name is required")
		}
		if !item.Type.Valid() {
			verr.add(prefix+".item_type", "unknown item type")
		}
		if item.Quantity < 1 {
			verr.add(prefix+".quantity", "quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			verr.add(prefix+".unit_price", "unit price must not be negative")
		}
	}
	if in.DiscountAmount < 0 {
		verr.add("discount_amount", "discount amount must not be negative")
	}
	if in.DiscountPercentage < 0 || in.DiscountPercentage > 100 {
		verr.add("discount_percentage", "discount percentage must be between 0 and 100")
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		verr.add("payment_method", "unknown payment method")
	}
	if in.AmountPaid < 0 {
		verr.add("amount_paid", "amount paid must not be negative")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Calculate computes subtotal, discounts, final total and change/balance.
func Calculate(in Input) (Totals, error) {
	if err := Validate(in); err != nil {
		return Totals{}, err
	}

	var out Totals
	var consultation float64
	out.Lines = make([]LineTotal, 0, len(in.Items))
	for _, item := range in.Items {
		total := item.Total()
		out.Lines = append(out.Lines, LineTotal{Item: item, TotalPrice: round(total)})
		out.Subtotal += total
		if item.Type == ItemConsultation {
			consultation += total
		}
	}

	out.RegularDiscount = RegularDiscount(out.Subtotal, in.DiscountAmount, in.DiscountPercentage)
	out.SeniorDiscount = SeniorDiscount(consultation, in.SeniorCitizen, in.PaymentMethod)
	out.FinalTotal = math.Max(0, out.Subtotal-out.RegularDiscount-out.SeniorDiscount)

	out.AmountPaid = in.AmountPaid
	out.Change = math.Max(0, in.AmountPaid-out.FinalTotal)
	out.Balance = math.Max(0, out.FinalTotal-in.AmountPaid)

	out.Subtotal = round(out.Subtotal)
	out.RegularDiscount = round(out.RegularDiscount)
	out.SeniorDiscount = round(out.SeniorDiscount)
	out.FinalTotal = round(out.FinalTotal)
	out.AmountPaid = round(out.AmountPaid)
	out.Change = round(out.Change)
	out.Balance = round(out.Balance)
	return out, nil
}

// RegularDiscount returns the percentage discount when one is set, otherwise
// the flat amount.
func RegularDiscount(subtotal, amount, percentage float64) float64 {
	if percentage > 0 {
		return subtotal * percentage / 100
	}
	return amount
}

// SeniorDiscount applies only to consultation charges and never to HMO payments.
func SeniorDiscount(consultationTotal float64, senior bool, method PaymentMethod) float64 {
	if !senior || method == PaymentHMO {
		return 0
	}
	return consultationTotal * SeniorDiscountRate
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
