package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type requestInfoKey struct{}

type requestInfo struct {
	IPAddress string
	UserAgent string
}

// WithRequestInfo stores the caller's address and user agent for audit entries.
func WithRequestInfo(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{IPAddress: ipAddress, UserAgent: userAgent})
}

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type LogOptions struct {
	Changes interface{}
}

// Entry builds an audit log without persisting it, for callers that write it
// inside their own database transaction.
func (s *Service) Entry(ctx context.Context, action, entityType string, entityID uuid.UUID, opts *LogOptions) (*model.AuditLog, error) {
	var changes json.RawMessage
	if opts != nil && opts.Changes != nil {
		b, err := json.Marshal(opts.Changes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		changes = b
	}

	log := &model.AuditLog{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		CreatedAt:  s.now(),
	}
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		if info.IPAddress != "" {
			log.IPAddress = &info.IPAddress
		}
		if info.UserAgent != "" {
			log.UserAgent = &info.UserAgent
		}
	}
	return log, nil
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	log, err := s.Entry(ctx, action, entityType, entityID, opts)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, log)
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error) {
	return s.repo.List(ctx, filters)
}

// Cleanup removes entries older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(ctx, s.now().Add(-retention))
}
