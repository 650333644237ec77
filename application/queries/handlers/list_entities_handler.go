package handlers

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/ports"
	"cortex-backend/application/queries"
	"cortex-backend/domain/core/entities"
)

const defaultPageLimit = 50

// ListEntitiesHandler serves paginated kind listings
type ListEntitiesHandler struct {
	entityRepo ports.EntityRepository
	logger     *zap.Logger
}

// NewListEntitiesHandler creates a new handler instance
func NewListEntitiesHandler(entityRepo ports.EntityRepository, logger *zap.Logger) *ListEntitiesHandler {
	return &ListEntitiesHandler{entityRepo: entityRepo, logger: logger}
}

// Handle executes the list query
func (h *ListEntitiesHandler) Handle(ctx context.Context, query queries.ListEntitiesQuery) (*queries.ListEntitiesResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	page := ports.Pagination{Limit: limit, Cursor: query.Cursor}
	items, nextCursor, err := h.entityRepo.ListByKind(ctx, entities.Kind(query.Kind), page)
	if err != nil {
		return nil, err
	}

	return &queries.ListEntitiesResult{Entities: items, NextCursor: nextCursor}, nil
}
