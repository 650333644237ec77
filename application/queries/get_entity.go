package queries

import (
	"errors"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// GetEntityQuery requests an entity together with its one-hop
// neighborhood: touching synapses, referenced entities and a grouping
// index by role and direction.
type GetEntityQuery struct {
	EntityID       string `json:"entity_id" validate:"required"`
	IncludeDeleted bool   `json:"include_deleted"`
}

// Validate validates the query
func (q GetEntityQuery) Validate() error {
	if !valueobjects.IsRawID(q.EntityID) {
		return errors.New("entity id is required")
	}
	return nil
}

// NeighborhoodResult is the expanded one-hop view around an entity.
// Relatives carries both the related entities and the synapses
// themselves in envelope form; synapses are first-class related items,
// not just edges.
type NeighborhoodResult struct {
	Entity          *entities.Entity
	Relatives       []*entities.Entity
	Synapses        []*entities.Synapse
	RelativesByRole map[string]map[entities.Direction][]valueobjects.EntityID
	RelativeIDs     []valueobjects.EntityID
}
