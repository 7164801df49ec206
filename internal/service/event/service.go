package event

import (
	"context"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/event"
)

// OutboxRecorder writes tracked events into the outbox table; the outbox
// processor publishes them later.
type OutboxRecorder struct {
	outboxRepo repository.OutboxRepository
}

func NewOutboxRecorder(outboxRepo repository.OutboxRepository) *OutboxRecorder {
	return &OutboxRecorder{outboxRepo: outboxRepo}
}

func (s *OutboxRecorder) Record(ctx context.Context, eventType event.EventType, payload []byte) error {
	return s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: string(eventType),
		Payload:   payload,
	})
}

