package handlers

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/ports"
	"cortex-backend/application/queries"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// GetEntityHandler resolves an entity's one-hop neighborhood.
//
// Expansion collects relatives from two sources: synapses touching the
// entity, and id-shaped values found by recursively scanning the
// entity's own attributes. The latter captures references stored
// directly on the entity, such as an authorId attribute, that never
// went through a synapse.
type GetEntityHandler struct {
	entityRepo  ports.EntityRepository
	synapseRepo ports.SynapseRepository
	logger      *zap.Logger
}

// NewGetEntityHandler creates a new handler instance
func NewGetEntityHandler(entityRepo ports.EntityRepository, synapseRepo ports.SynapseRepository, logger *zap.Logger) *GetEntityHandler {
	return &GetEntityHandler{
		entityRepo:  entityRepo,
		synapseRepo: synapseRepo,
		logger:      logger,
	}
}

// Handle executes the neighborhood query
func (h *GetEntityHandler) Handle(ctx context.Context, query queries.GetEntityQuery) (*queries.NeighborhoodResult, error) {
	targetID, err := valueobjects.NewEntityIDFromString(query.EntityID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("entity id is not a valid raw id")
	}

	target, err := h.entityRepo.GetByID(ctx, targetID, query.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	synapses, err := h.synapseRepo.GetByEndpoint(ctx, targetID, query.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	// Candidate ids from synapse endpoints, then from the attribute
	// scan. Self-references never become candidates.
	seen := make(map[string]bool)
	var candidates []valueobjects.EntityID
	addCandidate := func(id valueobjects.EntityID) {
		if id.Equals(targetID) || seen[id.String()] {
			return
		}
		seen[id.String()] = true
		candidates = append(candidates, id)
	}

	for _, synapse := range synapses {
		if other, ok := synapse.OtherEnd(targetID); ok {
			addCandidate(other)
		}
	}
	for _, id := range valueobjects.ScanAttributeIDs(target.Attributes()) {
		addCandidate(id)
	}

	// Ids that resolve to nothing are dropped silently; a value can be
	// id-shaped by coincidence.
	related, err := h.entityRepo.GetByIDs(ctx, candidates, query.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	relatives := make([]*entities.Entity, 0, len(related)+len(synapses))
	relativeIDs := make([]valueobjects.EntityID, 0, len(related)+len(synapses))
	relatives = append(relatives, related...)
	for _, e := range related {
		relativeIDs = append(relativeIDs, e.ID())
	}
	for _, synapse := range synapses {
		envelope, err := synapse.Envelope()
		if err != nil {
			return nil, err
		}
		relatives = append(relatives, envelope)
		relativeIDs = append(relativeIDs, synapse.ID())
	}

	return &queries.NeighborhoodResult{
		Entity:          target,
		Relatives:       relatives,
		Synapses:        synapses,
		RelativesByRole: groupByRole(targetID, synapses),
		RelativeIDs:     relativeIDs,
	}, nil
}

// groupByRole indexes synapse counterparts by (role, direction seen
// from the target): out when the target is the from endpoint, in when
// it is the to endpoint, the synapse's own value when undirected. One
// counterpart appears at most once per key, but every role connecting
// it gets its own key.
func groupByRole(target valueobjects.EntityID, synapses []*entities.Synapse) map[string]map[entities.Direction][]valueobjects.EntityID {
	index := make(map[string]map[entities.Direction][]valueobjects.EntityID)
	for _, synapse := range synapses {
		other, ok := synapse.OtherEnd(target)
		if !ok {
			continue
		}
		direction := synapse.DirectionFrom(target)

		byDirection, ok := index[synapse.Role()]
		if !ok {
			byDirection = make(map[entities.Direction][]valueobjects.EntityID)
			index[synapse.Role()] = byDirection
		}
		if containsID(byDirection[direction], other) {
			continue
		}
		byDirection[direction] = append(byDirection[direction], other)
	}
	return index
}

func containsID(ids []valueobjects.EntityID, id valueobjects.EntityID) bool {
	for _, candidate := range ids {
		if candidate.Equals(id) {
			return true
		}
	}
	return false
}
