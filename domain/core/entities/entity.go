package entities

import (
	"time"

	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
	pkgerrors "cortex-backend/pkg/errors"
)

// Entity is the common envelope shared by every record in the
// polymorphic collection. Kind-specific data lives in the open
// attribute bag; the envelope owns identity, timestamps and the
// soft-delete marker.
type Entity struct {
	// Private fields ensure encapsulation
	id         valueobjects.EntityID
	kind       Kind
	attributes map[string]interface{}
	ownerID    *valueobjects.EntityID
	createdBy  *valueobjects.EntityID
	updatedBy  *valueobjects.EntityID
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
	version    int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewEntity creates a new entity with a fresh id and server-assigned
// timestamps. Unknown kinds are rejected.
func NewEntity(kind Kind, attributes map[string]interface{}) (*Entity, error) {
	return NewEntityWithID(valueobjects.NewEntityID(), kind, attributes)
}

// NewEntityWithID creates a new entity with a caller-supplied id.
// Handlers pre-generate ids so the external token can be returned
// without a read-back.
func NewEntityWithID(id valueobjects.EntityID, kind Kind, attributes map[string]interface{}) (*Entity, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("entity id cannot be empty")
	}
	if !IsRegisteredKind(kind) {
		return nil, pkgerrors.NewUnknownKindError(string(kind))
	}
	if attributes == nil {
		attributes = make(map[string]interface{})
	}

	now := time.Now().UTC()
	e := &Entity{
		id:         id,
		kind:       kind,
		attributes: attributes,
		createdAt:  now,
		updatedAt:  now,
		version:    1,
		events:     []events.DomainEvent{},
	}

	e.addEvent(events.NewEntityCreated(e.id, string(e.kind), now))
	return e, nil
}

// ReconstructEntity rebuilds an entity from repository data with
// preserved timestamps. No creation event is raised.
func ReconstructEntity(
	id valueobjects.EntityID,
	kind Kind,
	attributes map[string]interface{},
	ownerID, createdBy, updatedBy *valueobjects.EntityID,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
	version int,
) (*Entity, error) {
	if !IsRegisteredKind(kind) {
		return nil, pkgerrors.NewUnknownKindError(string(kind))
	}
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	return &Entity{
		id:         id,
		kind:       kind,
		attributes: attributes,
		ownerID:    ownerID,
		createdBy:  createdBy,
		updatedBy:  updatedBy,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		deletedAt:  deletedAt,
		version:    version,
		events:     []events.DomainEvent{},
	}, nil
}

// ID returns the entity's unique identifier
func (e *Entity) ID() valueobjects.EntityID {
	return e.id
}

// Kind returns the entity's discriminator
func (e *Entity) Kind() Kind {
	return e.kind
}

// Attributes returns a shallow copy of the attribute bag
func (e *Entity) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, len(e.attributes))
	for k, v := range e.attributes {
		attrs[k] = v
	}
	return attrs
}

// Attribute returns a single attribute value
func (e *Entity) Attribute(key string) (interface{}, bool) {
	v, ok := e.attributes[key]
	return v, ok
}

// OwnerID returns the owning user reference, if any
func (e *Entity) OwnerID() *valueobjects.EntityID {
	return e.ownerID
}

// CreatedBy returns the creating user reference, if any
func (e *Entity) CreatedBy() *valueobjects.EntityID {
	return e.createdBy
}

// UpdatedBy returns the last updating user reference, if any
func (e *Entity) UpdatedBy() *valueobjects.EntityID {
	return e.updatedBy
}

// CreatedAt returns when the entity was created
func (e *Entity) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the entity was last updated
func (e *Entity) UpdatedAt() time.Time {
	return e.updatedAt
}

// DeletedAt returns the soft-delete timestamp, nil while live
func (e *Entity) DeletedAt() *time.Time {
	return e.deletedAt
}

// IsDeleted reports whether the entity is soft-deleted
func (e *Entity) IsDeleted() bool {
	return e.deletedAt != nil
}

// Version returns the entity's version for optimistic locking
func (e *Entity) Version() int {
	return e.version
}

// SetOwner records the owning user
func (e *Entity) SetOwner(userID valueobjects.EntityID) {
	e.ownerID = &userID
}

// SetCreatedBy records the acting principal at creation time
func (e *Entity) SetCreatedBy(userID valueobjects.EntityID) {
	e.createdBy = &userID
}

// SetUpdatedBy records the acting principal for the current update
func (e *Entity) SetUpdatedBy(userID valueobjects.EntityID) {
	e.updatedBy = &userID
}

// MergeAttributes merges partial attributes into the bag and refreshes
// updatedAt. A nil value removes the key. Kind and id never change.
func (e *Entity) MergeAttributes(partial map[string]interface{}) error {
	if e.IsDeleted() {
		return pkgerrors.NewValidationError("cannot update a deleted entity")
	}
	if len(partial) == 0 {
		return nil
	}

	for k, v := range partial {
		if v == nil {
			delete(e.attributes, k)
			continue
		}
		e.attributes[k] = v
	}
	e.updatedAt = time.Now().UTC()
	e.version++

	e.addEvent(events.NewEntityUpdated(e.id, string(e.kind), e.updatedAt))
	return nil
}

// SoftDelete marks the entity deleted. Deleting an already-deleted
// entity is a no-op success; the return value reports whether state
// changed.
func (e *Entity) SoftDelete() bool {
	if e.deletedAt != nil {
		return false
	}
	now := time.Now().UTC()
	e.deletedAt = &now
	e.updatedAt = now
	e.addEvent(events.NewEntitySoftDeleted(e.id, now))
	return true
}

// Restore clears the soft-delete marker. Restoring a live entity is a
// no-op success.
func (e *Entity) Restore() bool {
	if e.deletedAt == nil {
		return false
	}
	e.deletedAt = nil
	e.updatedAt = time.Now().UTC()
	e.addEvent(events.NewEntityRestored(e.id, e.updatedAt))
	return true
}

// GetUncommittedEvents returns all uncommitted domain events
func (e *Entity) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (e *Entity) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (e *Entity) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}
