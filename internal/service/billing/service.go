package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/billing"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Service struct {
	repo         repository.BillingRepository
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	auditor      *audit.Service
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(
	repo repository.BillingRepository,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	auditor *audit.Service,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		patients:     patients,
		auditor:      auditor,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Calculate previews totals without persisting anything.
func (s *Service) Calculate(ctx context.Context, in billing.Input) (billing.Totals, error) {
	totals, err := billing.Calculate(in)
	if err != nil {
		return billing.Totals{}, translate(err)
	}
	return totals, nil
}

func translate(err error) error {
	var verr *billing.ValidationError
	if errors.As(err, &verr) {
		return apperrors.Validation(verr.Fields)
	}
	return err
}

// recalculate runs every stored amount back through the calculator.
func recalculate(txn *model.BillingTransaction) error {
	totals, err := billing.Calculate(txn.Input())
	if err != nil {
		return translate(err)
	}
	txn.Apply(totals)
	return nil
}

func (s *Service) newCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TXN-%s-%s", s.now().Format("20060102"), suffix)
}

func (s *Service) loadPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.FieldError("patient_id", "The selected patient id is invalid.")
	}
	return patient, err
}

func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.FieldError(field, fmt.Sprintf("The %s must be a valid identifier.", strings.ReplaceAll(field, "_", " ")))
	}
	return &id, nil
}

func itemsFromRequest(items []billing.Item) []model.BillingItem {
	out := make([]model.BillingItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.BillingItem{
			ItemType:  it.Type,
			ItemName:  strings.TrimSpace(it.Name),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}

// applyRequest copies the editable fields of req onto txn.
func (s *Service) applyRequest(ctx context.Context, txn *model.BillingTransaction, req *model.TransactionRequest) error {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return apperrors.FieldError("patient_id", "The patient id must be a valid identifier.")
	}
	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return err
	}
	doctorID, err := parseOptionalID("doctor_id", req.DoctorID)
	if err != nil {
		return err
	}

	txn.PatientID = patient.ID
	txn.DoctorID = doctorID
	txn.PaymentMethod = billing.PaymentMethod(req.PaymentMethod)
	txn.HMOProvider = req.HMOProvider
	txn.HMOReference = req.HMOReference
	if txn.PaymentMethod == billing.PaymentHMO && txn.HMOProvider == nil {
		txn.HMOProvider = patient.HMOProvider
	}
	txn.Items = itemsFromRequest(req.Items)
	txn.DiscountAmount = req.DiscountAmount
	txn.DiscountPercentage = req.DiscountPercentage
	txn.IsSeniorCitizen = patient.IsSeniorCitizen
	if req.IsSeniorCitizen != nil {
		txn.IsSeniorCitizen = *req.IsSeniorCitizen
	}
	txn.AmountPaid = req.AmountPaid
	txn.Notes = req.Notes

	if req.TransactionDate != "" {
		date, err := model.ParseDate(req.TransactionDate)
		if err != nil {
			return apperrors.FieldError("transaction_date", "The transaction date must be a date in YYYY-MM-DD format.")
		}
		txn.TransactionDate = date
	} else if txn.TransactionDate.IsZero() {
		txn.TransactionDate = model.NewDate(s.now())
	}
	return recalculate(txn)
}

// Create records a manual transaction in draft or pending status.
func (s *Service) Create(ctx context.Context, req *model.TransactionRequest) (*model.BillingTransaction, error) {
	txn := &model.BillingTransaction{
		TransactionCode: s.newCode(),
		Status:          model.TransactionPending,
	}
	if req.Status != "" {
		txn.Status = model.TransactionStatus(req.Status)
	}
	if err := s.applyRequest(ctx, txn, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}
	s.metrics.TransactionsCreated.WithLabelValues("manual").Inc()
	return txn, nil
}

// CreateFromAppointments bills one or more appointments of a single patient:
// one consultation line per appointment plus one laboratory line per lab test.
func (s *Service) CreateFromAppointments(ctx context.Context, req *model.FromAppointmentsRequest) (*model.BillingTransaction, error) {
	ids := make([]uuid.UUID, 0, len(req.AppointmentIDs))
	seen := make(map[uuid.UUID]bool, len(req.AppointmentIDs))
	for i, raw := range req.AppointmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.FieldError(fmt.Sprintf("appointment_ids[%d]", i), "The appointment id must be a valid identifier.")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	appointments, err := s.appointments.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(appointments) != len(ids) {
		return nil, apperrors.FieldError("appointment_ids", "One or more selected appointments do not exist.")
	}

	patientID := appointments[0].PatientID
	for _, apt := range appointments {
		if apt.PatientID != patientID {
			return nil, apperrors.FieldError("appointment_ids", "The selected appointments must belong to the same patient.")
		}
		if apt.BillingStatus == model.BillingStatusCancelled {
			return nil, apperrors.FieldError("appointment_ids", "Cancelled appointments cannot be billed.")
		}
	}

	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctorID, err := parseOptionalID("doctor_id", req.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctorID == nil {
		doctorID = appointments[0].SpecialistID
	}

	txn := &model.BillingTransaction{
		TransactionCode:    s.newCode(),
		PatientID:          patient.ID,
		DoctorID:           doctorID,
		PaymentMethod:      billing.PaymentMethod(req.PaymentMethod),
		HMOProvider:        req.HMOProvider,
		HMOReference:       req.HMOReference,
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
		IsSeniorCitizen:    patient.IsSeniorCitizen,
		Status:             model.TransactionPending,
		Notes:              req.Notes,
		TransactionDate:    model.NewDate(s.now()),
		AppointmentIDs:     make(model.UUIDs, 0, len(appointments)),
	}
	if req.IsSeniorCitizen != nil {
		txn.IsSeniorCitizen = *req.IsSeniorCitizen
	}
	if txn.PaymentMethod == billing.PaymentHMO && txn.HMOProvider == nil {
		txn.HMOProvider = patient.HMOProvider
	}

	for _, apt := range appointments {
		txn.AppointmentIDs = append(txn.AppointmentIDs, apt.ID)
		txn.Items = append(txn.Items, model.BillingItem{
			ItemType:  billing.ItemConsultation,
			ItemName:  fmt.Sprintf("%s (%s %s)", apt.AppointmentType.Label(), apt.AppointmentDate, apt.AppointmentTime),
			Quantity:  1,
			UnitPrice: apt.Price,
		})
		for _, lab := range apt.LabTests {
			txn.Items = append(txn.Items, model.BillingItem{
				ItemType:  billing.ItemLaboratory,
				ItemName:  lab.Name,
				Quantity:  1,
				UnitPrice: lab.Price,
			})
		}
	}

	if err := recalculate(txn); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}
	s.metrics.TransactionsCreated.WithLabelValues("appointments").Inc()
	return txn, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.BillingTransaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.TransactionFilters) ([]*model.BillingTransaction, int, error) {
	return s.repo.List(ctx, filters)
}

// Update replaces items and amounts of a draft or pending transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.TransactionRequest) (*model.BillingTransaction, error) {
	txn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.Status.Editable() {
		return nil, apperrors.Conflict(fmt.Sprintf("a %s transaction can no longer be edited", txn.Status))
	}
	if patientID, err := uuid.Parse(req.PatientID); err == nil && patientID != txn.PatientID {
		return nil, apperrors.FieldError("patient_id", "The patient of an existing transaction cannot be changed.")
	}
	if req.Status != "" {
		next := model.TransactionStatus(req.Status)
		if next != txn.Status && !txn.Status.CanTransition(next) {
			return nil, apperrors.Conflict(fmt.Sprintf("a %s transaction cannot move back to %s", txn.Status, next))
		}
		txn.Status = next
	}
	if err := s.applyRequest(ctx, txn, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// MarkPaid settles a draft or pending transaction. The amount paid has to
// cover the total unless an HMO pays, in which case a reference is required.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, req *model.MarkPaidRequest) (*model.BillingTransaction, error) {
	txn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.Status.CanTransition(model.TransactionPaid) {
		return nil, apperrors.Conflict(fmt.Sprintf("transaction is already %s", txn.Status))
	}
	previous := txn.Status

	if req.PaymentMethod != "" {
		txn.PaymentMethod = billing.PaymentMethod(req.PaymentMethod)
	}
	if req.HMOReference != nil && strings.TrimSpace(*req.HMOReference) != "" {
		ref := strings.TrimSpace(*req.HMOReference)
		txn.HMOReference = &ref
	}
	txn.AmountPaid = req.AmountPaid

	if err := recalculate(txn); err != nil {
		return nil, err
	}

	if txn.PaymentMethod == billing.PaymentHMO {
		if txn.HMOReference == nil || *txn.HMOReference == "" {
			return nil, apperrors.FieldError("hmo_reference", "The hmo reference field is required for HMO payments.")
		}
	} else if txn.Balance > 0 {
		return nil, apperrors.FieldError("amount_paid",
			fmt.Sprintf("The amount paid must be at least %.2f.", txn.TotalAmount))
	}

	now := s.now()
	txn.Status = model.TransactionPaid
	txn.PaidAt = &now

	entry, err := s.auditor.Entry(ctx, model.AuditActionPay, model.AuditEntityTransaction, txn.ID, &audit.LogOptions{
		Changes: map[string]interface{}{
			"from":           previous,
			"to":             txn.Status,
			"payment_method": txn.PaymentMethod,
			"total_amount":   txn.TotalAmount,
			"amount_paid":    txn.AmountPaid,
			"change_amount":  txn.ChangeAmount,
			"hmo_reference":  txn.HMOReference,
		},
	})
	if err != nil {
		return nil, err
	}

	err = s.repo.ChangeStatus(ctx, txn,
		[]model.TransactionStatus{model.TransactionDraft, model.TransactionPending}, entry)
	if err != nil {
		return nil, err
	}

	s.metrics.TransactionsPaid.WithLabelValues(string(txn.PaymentMethod)).Inc()
	s.metrics.AmountCollected.WithLabelValues(string(txn.PaymentMethod)).Add(txn.TotalAmount)
	s.logger.Info("Transaction paid",
		"transaction_id", txn.ID.String(),
		"transaction_code", txn.TransactionCode,
		"payment_method", string(txn.PaymentMethod),
		"total_amount", txn.TotalAmount)
	return txn, nil
}

// Cancel voids a draft or pending transaction.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.BillingTransaction, error) {
	return s.transition(ctx, id, model.TransactionCancelled, model.AuditActionCancel, reason)
}

// Refund reverses a paid transaction.
func (s *Service) Refund(ctx context.Context, id uuid.UUID, reason *string) (*model.BillingTransaction, error) {
	return s.transition(ctx, id, model.TransactionRefunded, model.AuditActionRefund, reason)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next model.TransactionStatus, action string, reason *string) (*model.BillingTransaction, error) {
	txn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.Status.CanTransition(next) {
		return nil, apperrors.Conflict(fmt.Sprintf("a %s transaction cannot be %s", txn.Status, next))
	}
	previous := txn.Status

	now := s.now()
	txn.Status = next
	txn.StatusReason = reason
	switch next {
	case model.TransactionCancelled:
		txn.CancelledAt = &now
	case model.TransactionRefunded:
		txn.RefundedAt = &now
	}

	entry, err := s.auditor.Entry(ctx, action, model.AuditEntityTransaction, txn.ID, &audit.LogOptions{
		Changes: map[string]interface{}{
			"from":   previous,
			"to":     next,
			"reason": reason,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.ChangeStatus(ctx, txn, []model.TransactionStatus{previous}, entry); err != nil {
		return nil, err
	}
	return txn, nil
}
