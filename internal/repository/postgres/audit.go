package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.CreateAuditLog(ctx, tx, log)
	})
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error) {
	var c conditions
	if filters.EntityType != "" {
		c.add("entity_type = $%d", filters.EntityType)
	}
	if filters.EntityID != nil {
		c.add("entity_id = $%d", *filters.EntityID)
	}
	if filters.Action != "" {
		c.add("action = $%d", filters.Action)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `
		SELECT id, action, entity_type, entity_id, changes, ip_address, user_agent, created_at
		FROM audit_logs` + c.where() + ` ORDER BY created_at DESC` + limit

	logs := []*model.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM audit_logs
		WHERE created_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return result.RowsAffected()
}
