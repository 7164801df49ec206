package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const transactionColumns = `id, transaction_code, patient_id, doctor_id, payment_method, hmo_provider,
		hmo_reference, discount_amount, discount_percentage, is_senior_citizen, senior_discount,
		subtotal, total_amount, amount_paid, change_amount, balance, status, notes,
		appointment_ids, transaction_date, paid_at, cancelled_at, refunded_at, status_reason,
		created_at, updated_at`

const itemColumns = `id, transaction_id, item_type, item_name, quantity, unit_price, total_price, position`

func (r *billingRepository) Create(ctx context.Context, txn *model.BillingTransaction) error {
	query := `
		INSERT INTO billing_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26)
	`
	txn.ID = uuid.New()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if len(txn.AppointmentIDs) > 0 {
			if err := r.claimAppointments(ctx, tx, txn.AppointmentIDs); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, query,
			txn.ID,
			txn.TransactionCode,
			txn.PatientID,
			txn.DoctorID,
			txn.PaymentMethod,
			txn.HMOProvider,
			txn.HMOReference,
			txn.DiscountAmount,
			txn.DiscountPercentage,
			txn.IsSeniorCitizen,
			txn.SeniorDiscount,
			txn.Subtotal,
			txn.TotalAmount,
			txn.AmountPaid,
			txn.ChangeAmount,
			txn.Balance,
			txn.Status,
			txn.Notes,
			txn.AppointmentIDs,
			txn.TransactionDate,
			txn.PaidAt,
			txn.CancelledAt,
			txn.RefundedAt,
			txn.StatusReason,
			txn.CreatedAt,
			txn.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create billing transaction: %w", err)
		}
		return r.insertItems(ctx, tx, txn)
	})
}

// claimAppointments locks the appointment rows so two requests cannot bill
// the same appointment, then rejects appointments an active transaction holds.
func (r *billingRepository) claimAppointments(ctx context.Context, tx *sqlx.Tx, ids model.UUIDs) error {
	if _, err := tx.ExecContext(ctx, `SELECT id FROM appointments WHERE id = ANY($1) FOR UPDATE`, ids); err != nil {
		return fmt.Errorf("failed to lock appointments: %w", err)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM billing_transactions
			WHERE appointment_ids && $1
			AND status NOT IN ('cancelled', 'refunded')
		)
	`
	var billed bool
	if err := tx.GetContext(ctx, &billed, query, ids); err != nil {
		return fmt.Errorf("failed to check billed appointments: %w", err)
	}
	if billed {
		return apperrors.Conflict("one or more appointments are already billed")
	}
	return nil
}

func (r *billingRepository) insertItems(ctx context.Context, tx *sqlx.Tx, txn *model.BillingTransaction) error {
	query := `
		INSERT INTO billing_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range txn.Items {
		item := &txn.Items[i]
		item.ID = uuid.New()
		item.TransactionID = txn.ID
		item.Position = i

		_, err := tx.ExecContext(ctx, query,
			item.ID,
			item.TransactionID,
			item.ItemType,
			item.ItemName,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create billing item: %w", err)
		}
	}
	return nil
}

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.BillingTransaction, error) {
	var txn model.BillingTransaction
	query := `SELECT ` + transactionColumns + ` FROM billing_transactions WHERE id = $1`
	if err := getOne(ctx, r.db, "transaction", &txn, query, id); err != nil {
		return nil, err
	}

	items := []model.BillingItem{}
	query = `SELECT ` + itemColumns + ` FROM billing_items WHERE transaction_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &items, query, id); err != nil {
		return nil, fmt.Errorf("failed to get billing items: %w", err)
	}
	txn.Items = items
	return &txn, nil
}

func (r *billingRepository) List(ctx context.Context, filters *model.TransactionFilters) ([]*model.BillingTransaction, int, error) {
	var c conditions
	if filters.PatientID != nil {
		c.add("patient_id = $%d", *filters.PatientID)
	}
	if filters.Status != "" {
		c.add("status = $%d", filters.Status)
	}
	if filters.PaymentMethod != "" {
		c.add("payment_method = $%d", filters.PaymentMethod)
	}
	if filters.DateFrom != nil {
		c.add("transaction_date >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		c.add("transaction_date <= $%d", *filters.DateTo)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM billing_transactions`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count billing transactions: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + transactionColumns + ` FROM billing_transactions` + c.where() +
		` ORDER BY transaction_date DESC, created_at DESC` + limit

	txns := []*model.BillingTransaction{}
	if err := r.db.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list billing transactions: %w", err)
	}
	if len(txns) == 0 {
		return txns, total, nil
	}

	ids := make([]uuid.UUID, 0, len(txns))
	byID := make(map[uuid.UUID]*model.BillingTransaction, len(txns))
	for _, t := range txns {
		t.Items = []model.BillingItem{}
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	var items []model.BillingItem
	query = `SELECT ` + itemColumns + ` FROM billing_items WHERE transaction_id = ANY($1) ORDER BY position`
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		return nil, 0, fmt.Errorf("failed to list billing items: %w", err)
	}
	for _, item := range items {
		if t, ok := byID[item.TransactionID]; ok {
			t.Items = append(t.Items, item)
		}
	}
	return txns, total, nil
}

// lockStatus reads the stored status under a row lock.
func (r *billingRepository) lockStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (model.TransactionStatus, error) {
	var status model.TransactionStatus
	query := `SELECT status FROM billing_transactions WHERE id = $1 FOR UPDATE`
	if err := getOne(ctx, tx, "transaction", &status, query, id); err != nil {
		return "", err
	}
	return status, nil
}

type rowVersion struct {
	Status    model.TransactionStatus `db:"status"`
	UpdatedAt time.Time               `db:"updated_at"`
}

// lockVersion reads status and updated_at under a row lock.
func (r *billingRepository) lockVersion(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (rowVersion, error) {
	var v rowVersion
	query := `SELECT status, updated_at FROM billing_transactions WHERE id = $1 FOR UPDATE`
	if err := getOne(ctx, tx, "transaction", &v, query, id); err != nil {
		return rowVersion{}, err
	}
	return v, nil
}

func (r *billingRepository) Update(ctx context.Context, txn *model.BillingTransaction) error {
	query := `
		UPDATE billing_transactions
		SET doctor_id = $1, payment_method = $2, hmo_provider = $3, hmo_reference = $4,
			discount_amount = $5, discount_percentage = $6, is_senior_citizen = $7,
			senior_discount = $8, subtotal = $9, total_amount = $10, amount_paid = $11,
			change_amount = $12, balance = $13, status = $14, notes = $15,
			transaction_date = $16, updated_at = $17
		WHERE id = $18
	`
	txn.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		status, err := r.lockStatus(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if !status.Editable() {
			return apperrors.Conflict(fmt.Sprintf("a %s transaction can no longer be edited", status))
		}

		_, err = tx.ExecContext(ctx, query,
			txn.DoctorID,
			txn.PaymentMethod,
			txn.HMOProvider,
			txn.HMOReference,
			txn.DiscountAmount,
			txn.DiscountPercentage,
			txn.IsSeniorCitizen,
			txn.SeniorDiscount,
			txn.Subtotal,
			txn.TotalAmount,
			txn.AmountPaid,
			txn.ChangeAmount,
			txn.Balance,
			txn.Status,
			txn.Notes,
			txn.TransactionDate,
			txn.UpdatedAt,
			txn.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update billing transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM billing_items WHERE transaction_id = $1`, txn.ID); err != nil {
			return fmt.Errorf("failed to replace billing items: %w", err)
		}
		return r.insertItems(ctx, tx, txn)
	})
}

func (r *billingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		status, err := r.lockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if !status.Deletable() {
			return apperrors.Conflict(fmt.Sprintf("a %s transaction cannot be deleted", status))
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM billing_transactions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete billing transaction: %w", err)
		}
		return nil
	})
}

func (r *billingRepository) ChangeStatus(ctx context.Context, txn *model.BillingTransaction, from []model.TransactionStatus, audit *model.AuditLog) error {
	query := `
		UPDATE billing_transactions
		SET status = $1, payment_method = $2, hmo_reference = $3, discount_amount = $4,
			senior_discount = $5, subtotal = $6, total_amount = $7, amount_paid = $8,
			change_amount = $9, balance = $10, paid_at = $11, cancelled_at = $12,
			refunded_at = $13, status_reason = $14, updated_at = $15
		WHERE id = $16
	`
	// txn carries amounts computed from the row as read at txn.UpdatedAt; any
	// write since then invalidates them.
	readAt := txn.UpdatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := r.lockVersion(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if !containsStatus(from, current.Status) {
			return apperrors.Conflict(fmt.Sprintf("transaction is already %s", current.Status))
		}
		if !current.UpdatedAt.Equal(readAt) {
			return apperrors.Conflict("transaction was modified by another request, reload it and try again")
		}

		txn.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx, query,
			txn.Status,
			txn.PaymentMethod,
			txn.HMOReference,
			txn.DiscountAmount,
			txn.SeniorDiscount,
			txn.Subtotal,
			txn.TotalAmount,
			txn.AmountPaid,
			txn.ChangeAmount,
			txn.Balance,
			txn.PaidAt,
			txn.CancelledAt,
			txn.RefundedAt,
			txn.StatusReason,
			txn.UpdatedAt,
			txn.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}

		if txn.Status == model.TransactionPaid && len(txn.AppointmentIDs) > 0 {
			_, err := tx.ExecContext(ctx,
				`UPDATE appointments SET billing_status = $1, updated_at = NOW() WHERE id = ANY($2)`,
				model.BillingStatusCompleted, txn.AppointmentIDs)
			if err != nil {
				return fmt.Errorf("failed to complete appointments: %w", err)
			}
		}

		if audit != nil {
			return r.CreateAuditLog(ctx, tx, audit)
		}
		return nil
	})
}

func containsStatus(list []model.TransactionStatus, s model.TransactionStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
