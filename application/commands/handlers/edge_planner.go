package handlers

import (
	"context"

	"cortex-backend/application/commands"
	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/registry"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// edgePlanner turns edge requests into validated synapses before
// anything is staged for persistence. All rule checks happen here, so
// a failed plan leaves the store untouched.
type edgePlanner struct {
	rules      *registry.Registry
	entityRepo ports.EntityRepository
}

func newEdgePlanner(rules *registry.Registry, entityRepo ports.EntityRepository) *edgePlanner {
	return &edgePlanner{rules: rules, entityRepo: entityRepo}
}

// planEdges resolves each request's endpoints, defaulting an omitted
// endpoint to the subject entity, validates the relationship against
// the rule table and builds the synapse. The subject may be unsaved;
// every other endpoint must resolve to a live entity.
func (p *edgePlanner) planEdges(ctx context.Context, subject *entities.Entity, reqs []commands.EdgeRequest) ([]*entities.Synapse, error) {
	synapses := make([]*entities.Synapse, 0, len(reqs))
	for _, req := range reqs {
		from, err := p.resolveEndpoint(req.From, subject)
		if err != nil {
			return nil, err
		}
		to, err := p.resolveEndpoint(req.To, subject)
		if err != nil {
			return nil, err
		}

		synapse, err := p.planSynapse(ctx, subject, from, to, req)
		if err != nil {
			return nil, err
		}
		synapses = append(synapses, synapse)
	}
	return synapses, nil
}

func (p *edgePlanner) planSynapse(ctx context.Context, subject *entities.Entity, from, to valueobjects.EntityID, req commands.EdgeRequest) (*entities.Synapse, error) {
	fromKind, err := p.kindOf(ctx, from, subject)
	if err != nil {
		return nil, err
	}
	toKind, err := p.kindOf(ctx, to, subject)
	if err != nil {
		return nil, err
	}

	if err := p.rules.Validate(fromKind, toKind, req.Role, entities.Direction(req.Direction)); err != nil {
		return nil, err
	}

	opts := synapseOptions(req.Order, req.Weight, req.Props)
	return entities.NewSynapse(from, to, req.Role, entities.Direction(req.Direction), opts...)
}

func (p *edgePlanner) resolveEndpoint(raw string, subject *entities.Entity) (valueobjects.EntityID, error) {
	if raw == "" {
		if subject == nil {
			return valueobjects.EntityID{}, pkgerrors.NewValidationError("edge endpoint cannot be defaulted without a subject entity")
		}
		return subject.ID(), nil
	}
	return valueobjects.NewEntityIDFromString(raw)
}

// kindOf returns the kind of an endpoint. The subject entity is
// answered from memory so edges can reference an entity that is being
// created in the same transaction.
func (p *edgePlanner) kindOf(ctx context.Context, id valueobjects.EntityID, subject *entities.Entity) (entities.Kind, error) {
	if subject != nil && subject.ID().Equals(id) {
		return subject.Kind(), nil
	}
	e, err := p.entityRepo.GetByID(ctx, id, false)
	if err != nil {
		return "", err
	}
	return e.Kind(), nil
}

func synapseOptions(order *int, weight *float64, props map[string]interface{}) []entities.SynapseOption {
	var opts []entities.SynapseOption
	if order != nil {
		opts = append(opts, entities.WithOrder(*order))
	}
	if weight != nil {
		opts = append(opts, entities.WithWeight(*weight))
	}
	if len(props) > 0 {
		opts = append(opts, entities.WithProps(props))
	}
	return opts
}
