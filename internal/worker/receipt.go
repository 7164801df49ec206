package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

type ReceiptSender interface {
	SendReceipt(ctx context.Context, txn *model.BillingTransaction, patient *model.Patient) error
}

// ReceiptHandler emails a receipt for every BILLING_PAID message.
type ReceiptHandler struct {
	billing  repository.BillingRepository
	patients repository.PatientRepository
	mailer   ReceiptSender
	logger   *logger.Logger
}

func NewReceiptHandler(billing repository.BillingRepository, patients repository.PatientRepository, mailer ReceiptSender, logger *logger.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		billing:  billing,
		patients: patients,
		mailer:   mailer,
		logger:   logger,
	}
}

type paidPayload struct {
	Data struct {
		ID uuid.UUID `json:"id"`
	} `json:"data"`
}

func (h *ReceiptHandler) Handle(ctx context.Context, raw []byte) error {
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	var payload paidPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode event %s: %w", msg.ID, err)
	}
	if payload.Data.ID == uuid.Nil {
		return fmt.Errorf("event %s has no transaction id", msg.ID)
	}

	txn, err := h.billing.Get(ctx, payload.Data.ID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", payload.Data.ID, err)
	}
	if txn.Status != model.TransactionPaid {
		h.logger.Debug("Skipping receipt for unpaid transaction", "transaction_id", txn.ID.String(), "status", string(txn.Status))
		return nil
	}

	patient, err := h.patients.Get(ctx, txn.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient %s: %w", txn.PatientID, err)
	}

	if err := h.mailer.SendReceipt(ctx, txn, patient); err != nil {
		if errors.Is(err, email.ErrNoRecipient) {
			h.logger.Debug("Patient has no email, receipt not sent", "transaction_id", txn.ID.String())
			return nil
		}
		return err
	}

	h.logger.Info("Receipt sent", "transaction_id", txn.ID.String(), "transaction_code", txn.TransactionCode)
	return nil
}
