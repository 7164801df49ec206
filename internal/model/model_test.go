package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/pkg/billing"
)

func TestTransactionStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionDraft, TransactionPending, true},
		{TransactionDraft, TransactionPaid, true},
		{TransactionDraft, TransactionCancelled, true},
		{TransactionPending, TransactionPaid, true},
		{TransactionPending, TransactionCancelled, true},
		{TransactionPending, TransactionDraft, false},
		{TransactionPaid, TransactionRefunded, true},
		{TransactionPaid, TransactionCancelled, false},
		{TransactionCancelled, TransactionPaid, false},
		{TransactionRefunded, TransactionPaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, TransactionCancelled.Deletable())
	assert.False(t, TransactionPaid.Deletable())
	assert.False(t, TransactionCancelled.Editable())
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))

	_, err = ParseDate("03/01/2024")
	assert.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}

func TestSchedule_OrderedAndJSONB(t *testing.T) {
	s := Schedule{
		"friday": {"13:00"},
		"monday": {"09:00", "10:00"},
		"sunday": {},
	}
	ordered := s.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "monday", ordered[0].Day)
	assert.Equal(t, "friday", ordered[1].Day)

	v, err := s.Value()
	require.NoError(t, err)

	var back Schedule
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, []string{"09:00", "10:00"}, back["monday"])
}

func TestUUIDs_RoundTrip(t *testing.T) {
	ids := UUIDs{uuid.MustParse("5f1b7a3e-1d3c-4b8a-9a55-0f3c1e2d4b6a")}
	v, err := ids.Value()
	require.NoError(t, err)

	var back UUIDs
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, ids, back)
}

func TestBillingTransaction_InputApply(t *testing.T) {
	tx := &BillingTransaction{
		PaymentMethod:   billing.PaymentCash,
		IsSeniorCitizen: true,
		Items: []BillingItem{
			{ItemType: billing.ItemConsultation, ItemName: "Consultation", Quantity: 1, UnitPrice: 350},
			{ItemType: billing.ItemLaboratory, ItemName: "CBC", Quantity: 1, UnitPrice: 245},
		},
	}
	totals, err := billing.Calculate(tx.Input())
	require.NoError(t, err)
	tx.Apply(totals)

	assert.Equal(t, 595.0, tx.Subtotal)
	assert.Equal(t, 70.0, tx.SeniorDiscount)
	assert.Equal(t, 525.0, tx.TotalAmount)
	assert.Equal(t, 350.0, tx.Items[0].TotalPrice)
	assert.Equal(t, 1, tx.Items[1].Position)
}
