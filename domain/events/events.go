package events

import (
	"time"

	"cortex-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past; they are
// published after the owning transaction commits, never inside it.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// EntityCreated is raised when a new entity is persisted
type EntityCreated struct {
	BaseEvent
	EntityID valueobjects.EntityID `json:"entity_id"`
	Kind     string                `json:"kind"`
}

// NewEntityCreated creates an EntityCreated event
func NewEntityCreated(id valueobjects.EntityID, kind string, ts time.Time) EntityCreated {
	return EntityCreated{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "entity.created", Timestamp: ts},
		EntityID:  id,
		Kind:      kind,
	}
}

// EntityUpdated is raised when an entity's attributes change
type EntityUpdated struct {
	BaseEvent
	EntityID valueobjects.EntityID `json:"entity_id"`
	Kind     string                `json:"kind"`
}

// NewEntityUpdated creates an EntityUpdated event
func NewEntityUpdated(id valueobjects.EntityID, kind string, ts time.Time) EntityUpdated {
	return EntityUpdated{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "entity.updated", Timestamp: ts},
		EntityID:  id,
		Kind:      kind,
	}
}

// EntitySoftDeleted is raised when an entity is marked deleted
type EntitySoftDeleted struct {
	BaseEvent
	EntityID valueobjects.EntityID `json:"entity_id"`
}

// NewEntitySoftDeleted creates an EntitySoftDeleted event
func NewEntitySoftDeleted(id valueobjects.EntityID, ts time.Time) EntitySoftDeleted {
	return EntitySoftDeleted{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "entity.soft_deleted", Timestamp: ts},
		EntityID:  id,
	}
}

// EntityRestored is raised when a soft-deleted entity is restored
type EntityRestored struct {
	BaseEvent
	EntityID valueobjects.EntityID `json:"entity_id"`
}

// NewEntityRestored creates an EntityRestored event
func NewEntityRestored(id valueobjects.EntityID, ts time.Time) EntityRestored {
	return EntityRestored{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "entity.restored", Timestamp: ts},
		EntityID:  id,
	}
}

// SynapseCreated is raised when a new synapse is persisted
type SynapseCreated struct {
	BaseEvent
	SynapseID valueobjects.EntityID `json:"synapse_id"`
	From      valueobjects.EntityID `json:"from"`
	To        valueobjects.EntityID `json:"to"`
	Role      string                `json:"role"`
}

// NewSynapseCreated creates a SynapseCreated event
func NewSynapseCreated(id, from, to valueobjects.EntityID, role string, ts time.Time) SynapseCreated {
	return SynapseCreated{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "synapse.created", Timestamp: ts},
		SynapseID: id,
		From:      from,
		To:        to,
		Role:      role,
	}
}

// SynapseSoftDeleted is raised when a synapse is marked deleted
type SynapseSoftDeleted struct {
	BaseEvent
	SynapseID valueobjects.EntityID `json:"synapse_id"`
}

// NewSynapseSoftDeleted creates a SynapseSoftDeleted event
func NewSynapseSoftDeleted(id valueobjects.EntityID, ts time.Time) SynapseSoftDeleted {
	return SynapseSoftDeleted{
		BaseEvent: BaseEvent{AggregateID: id.String(), EventType: "synapse.soft_deleted", Timestamp: ts},
		SynapseID: id,
	}
}
