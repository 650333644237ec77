// Package fixtures provides test data builders.
package fixtures

import (
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// EntityBuilder builds test entities
type EntityBuilder struct {
	id         valueobjects.EntityID
	kind       entities.Kind
	attributes map[string]interface{}
	deleted    bool
}

// NewEntityBuilder creates a builder with sensible defaults
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{
		id:         valueobjects.NewEntityID(),
		kind:       entities.KindPost,
		attributes: map[string]interface{}{},
	}
}

func (b *EntityBuilder) WithID(id valueobjects.EntityID) *EntityBuilder {
	b.id = id
	return b
}

func (b *EntityBuilder) WithKind(kind entities.Kind) *EntityBuilder {
	b.kind = kind
	return b
}

func (b *EntityBuilder) WithAttribute(key string, value interface{}) *EntityBuilder {
	b.attributes[key] = value
	return b
}

func (b *EntityBuilder) Deleted() *EntityBuilder {
	b.deleted = true
	return b
}

// MustBuild builds the entity, panicking on invalid fixture data
func (b *EntityBuilder) MustBuild() *entities.Entity {
	e, err := entities.NewEntityWithID(b.id, b.kind, b.attributes)
	if err != nil {
		panic(err)
	}
	if b.deleted {
		e.SoftDelete()
	}
	e.MarkEventsAsCommitted()
	return e
}

// SynapseBuilder builds test synapses
type SynapseBuilder struct {
	from      valueobjects.EntityID
	to        valueobjects.EntityID
	role      string
	direction entities.Direction
	opts      []entities.SynapseOption
}

// NewSynapseBuilder creates a builder with sensible defaults
func NewSynapseBuilder() *SynapseBuilder {
	return &SynapseBuilder{
		from:      valueobjects.NewEntityID(),
		to:        valueobjects.NewEntityID(),
		role:      "related",
		direction: entities.DirectionUndirected,
	}
}

func (b *SynapseBuilder) WithEndpoints(from, to valueobjects.EntityID) *SynapseBuilder {
	b.from = from
	b.to = to
	return b
}

func (b *SynapseBuilder) WithRole(role string) *SynapseBuilder {
	b.role = role
	return b
}

func (b *SynapseBuilder) WithDirection(direction entities.Direction) *SynapseBuilder {
	b.direction = direction
	return b
}

func (b *SynapseBuilder) WithWeight(weight float64) *SynapseBuilder {
	b.opts = append(b.opts, entities.WithWeight(weight))
	return b
}

// MustBuild builds the synapse, panicking on invalid fixture data
func (b *SynapseBuilder) MustBuild() *entities.Synapse {
	s, err := entities.NewSynapse(b.from, b.to, b.role, b.direction, b.opts...)
	if err != nil {
		panic(err)
	}
	s.MarkEventsAsCommitted()
	return s
}
