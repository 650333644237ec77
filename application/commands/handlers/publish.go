package handlers

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/ports"
)

// publishCommitted sends the transaction's staged events after a
// successful commit. Publication is best-effort: the write already
// succeeded, so a publish failure is logged and swallowed.
func publishCommitted(ctx context.Context, publisher ports.EventPublisher, uow ports.UnitOfWork, logger *zap.Logger) {
	events := uow.CommittedEvents()
	if len(events) == 0 {
		return
	}
	if err := publisher.PublishBatch(ctx, events); err != nil {
		logger.Warn("failed to publish domain events", zap.Error(err), zap.Int("count", len(events)))
	}
}
