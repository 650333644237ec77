package queries

import (
	"errors"

	"cortex-backend/domain/core/entities"
)

// ListEntitiesQuery lists live entities of one kind, newest first,
// with cursor pagination.
type ListEntitiesQuery struct {
	Kind   string `json:"kind" validate:"required"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

// Validate validates the query
func (q ListEntitiesQuery) Validate() error {
	if q.Kind == "" {
		return errors.New("kind is required")
	}
	if !entities.IsRegisteredKind(entities.Kind(q.Kind)) {
		return errors.New("unknown entity kind")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// ListEntitiesResult carries one page of entities
type ListEntitiesResult struct {
	Entities   []*entities.Entity
	NextCursor string
}
