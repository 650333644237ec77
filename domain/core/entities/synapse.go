package entities

import (
	"time"

	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
	pkgerrors "cortex-backend/pkg/errors"
)

// Direction defines how a synapse points between its endpoints
type Direction string

const (
	DirectionOut        Direction = "out"
	DirectionIn         Direction = "in"
	DirectionUndirected Direction = "undirected"
)

// IsValidDirection reports whether d is a known direction value
func IsValidDirection(d Direction) bool {
	return d == DirectionOut || d == DirectionIn || d == DirectionUndirected
}

// Synapse is an entity of kind "synapse": a typed relationship between
// two entities, stored in the same polymorphic collection as the
// entities it connects.
type Synapse struct {
	id        valueobjects.EntityID
	from      valueobjects.EntityID
	to        valueobjects.EntityID
	role      string
	direction Direction
	order     *int
	weight    *float64
	props     map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time

	events []events.DomainEvent
}

// SynapseOption configures optional synapse fields at construction
type SynapseOption func(*Synapse)

// WithOrder sets the optional ordering hint
func WithOrder(order int) SynapseOption {
	return func(s *Synapse) { s.order = &order }
}

// WithWeight sets the optional edge weight
func WithWeight(weight float64) SynapseOption {
	return func(s *Synapse) { s.weight = &weight }
}

// WithProps sets the open property bag
func WithProps(props map[string]interface{}) SynapseOption {
	return func(s *Synapse) { s.props = props }
}

// NewSynapse creates a new synapse with full invariant validation:
// both endpoints present, no self-loops, a role from the controlled
// vocabulary and a known direction.
func NewSynapse(from, to valueobjects.EntityID, role string, direction Direction, opts ...SynapseOption) (*Synapse, error) {
	return NewSynapseWithID(valueobjects.NewEntityID(), from, to, role, direction, opts...)
}

// NewSynapseWithID creates a new synapse with a caller-supplied id
func NewSynapseWithID(id, from, to valueobjects.EntityID, role string, direction Direction, opts ...SynapseOption) (*Synapse, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse id cannot be empty")
	}
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse requires both endpoints")
	}
	if from.Equals(to) {
		return nil, pkgerrors.NewSelfLoopError(from.String())
	}
	if role == "" {
		return nil, pkgerrors.NewValidationError("synapse role cannot be empty")
	}
	if !IsValidDirection(direction) {
		return nil, pkgerrors.NewValidationError("synapse direction must be out, in or undirected")
	}

	now := time.Now().UTC()
	s := &Synapse{
		id:        id,
		from:      from,
		to:        to,
		role:      role,
		direction: direction,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.props == nil {
		s.props = make(map[string]interface{})
	}

	s.addEvent(events.NewSynapseCreated(s.id, from, to, role, now))
	return s, nil
}

// ReconstructSynapse rebuilds a synapse from repository data
func ReconstructSynapse(
	id, from, to valueobjects.EntityID,
	role string,
	direction Direction,
	order *int,
	weight *float64,
	props map[string]interface{},
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) (*Synapse, error) {
	if from.Equals(to) {
		return nil, pkgerrors.NewSelfLoopError(from.String())
	}
	if !IsValidDirection(direction) {
		return nil, pkgerrors.NewValidationError("synapse direction must be out, in or undirected")
	}
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Synapse{
		id:        id,
		from:      from,
		to:        to,
		role:      role,
		direction: direction,
		order:     order,
		weight:    weight,
		props:     props,
		createdAt: createdAt,
		updatedAt: updatedAt,
		deletedAt: deletedAt,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the synapse's unique identifier
func (s *Synapse) ID() valueobjects.EntityID { return s.id }

// From returns the source endpoint
func (s *Synapse) From() valueobjects.EntityID { return s.from }

// To returns the target endpoint
func (s *Synapse) To() valueobjects.EntityID { return s.to }

// Role returns the relationship role
func (s *Synapse) Role() string { return s.role }

// Direction returns the synapse's own direction value
func (s *Synapse) Direction() Direction { return s.direction }

// Order returns the optional ordering hint
func (s *Synapse) Order() *int { return s.order }

// Weight returns the optional edge weight
func (s *Synapse) Weight() *float64 { return s.weight }

// Props returns a shallow copy of the property bag
func (s *Synapse) Props() map[string]interface{} {
	props := make(map[string]interface{}, len(s.props))
	for k, v := range s.props {
		props[k] = v
	}
	return props
}

// CreatedAt returns when the synapse was created
func (s *Synapse) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the synapse was last updated
func (s *Synapse) UpdatedAt() time.Time { return s.updatedAt }

// DeletedAt returns the soft-delete timestamp, nil while live
func (s *Synapse) DeletedAt() *time.Time { return s.deletedAt }

// IsDeleted reports whether the synapse is soft-deleted
func (s *Synapse) IsDeleted() bool { return s.deletedAt != nil }

// MergeProps merges partial properties and refreshes updatedAt
func (s *Synapse) MergeProps(partial map[string]interface{}) error {
	if s.IsDeleted() {
		return pkgerrors.NewValidationError("cannot update a deleted synapse")
	}
	for k, v := range partial {
		if v == nil {
			delete(s.props, k)
			continue
		}
		s.props[k] = v
	}
	s.updatedAt = time.Now().UTC()
	return nil
}

// SetOrder updates the ordering hint
func (s *Synapse) SetOrder(order int) {
	s.order = &order
	s.updatedAt = time.Now().UTC()
}

// SetWeight updates the edge weight
func (s *Synapse) SetWeight(weight float64) {
	s.weight = &weight
	s.updatedAt = time.Now().UTC()
}

// SoftDelete marks the synapse deleted; idempotent
func (s *Synapse) SoftDelete() bool {
	if s.deletedAt != nil {
		return false
	}
	now := time.Now().UTC()
	s.deletedAt = &now
	s.updatedAt = now
	s.addEvent(events.NewSynapseSoftDeleted(s.id, now))
	return true
}

// Touches reports whether id is one of the synapse's endpoints
func (s *Synapse) Touches(id valueobjects.EntityID) bool {
	return s.from.Equals(id) || s.to.Equals(id)
}

// OtherEnd returns the endpoint that is not id. The boolean is false
// when id is not an endpoint at all.
func (s *Synapse) OtherEnd(id valueobjects.EntityID) (valueobjects.EntityID, bool) {
	switch {
	case s.from.Equals(id):
		return s.to, true
	case s.to.Equals(id):
		return s.from, true
	default:
		return valueobjects.EntityID{}, false
	}
}

// DirectionFrom normalizes the direction as seen from viewpoint:
// out when viewpoint is the source, in when it is the target, and the
// synapse's own direction when the synapse is undirected.
func (s *Synapse) DirectionFrom(viewpoint valueobjects.EntityID) Direction {
	if s.direction == DirectionUndirected {
		return DirectionUndirected
	}
	if s.from.Equals(viewpoint) {
		return DirectionOut
	}
	return DirectionIn
}

// Envelope returns the synapse in entity-envelope form, the shape it
// shares with every other record in the collection.
func (s *Synapse) Envelope() (*Entity, error) {
	attrs := map[string]interface{}{
		"from":      s.from.String(),
		"to":        s.to.String(),
		"role":      s.role,
		"direction": string(s.direction),
	}
	if s.order != nil {
		attrs["order"] = *s.order
	}
	if s.weight != nil {
		attrs["weight"] = *s.weight
	}
	if len(s.props) > 0 {
		attrs["props"] = s.props
	}
	return ReconstructEntity(s.id, KindSynapse, attrs, nil, nil, nil, s.createdAt, s.updatedAt, s.deletedAt, 1)
}

// SynapseFromEntity dispatches an envelope back to its typed shape.
// It fails when the entity is not of kind synapse or the envelope is
// structurally invalid.
func SynapseFromEntity(e *Entity) (*Synapse, error) {
	if e.Kind() != KindSynapse {
		return nil, pkgerrors.NewValidationError("entity is not a synapse")
	}

	from, err := endpointFromAttribute(e, "from")
	if err != nil {
		return nil, err
	}
	to, err := endpointFromAttribute(e, "to")
	if err != nil {
		return nil, err
	}

	role, _ := e.Attribute("role")
	roleStr, ok := role.(string)
	if !ok || roleStr == "" {
		return nil, pkgerrors.NewValidationError("synapse envelope is missing a role")
	}

	direction, _ := e.Attribute("direction")
	dirStr, ok := direction.(string)
	if !ok {
		return nil, pkgerrors.NewValidationError("synapse envelope is missing a direction")
	}

	var order *int
	if raw, ok := e.Attribute("order"); ok {
		switch n := raw.(type) {
		case int:
			order = &n
		case float64:
			v := int(n)
			order = &v
		}
	}
	var weight *float64
	if raw, ok := e.Attribute("weight"); ok {
		if f, ok := raw.(float64); ok {
			weight = &f
		}
	}
	var props map[string]interface{}
	if raw, ok := e.Attribute("props"); ok {
		if m, ok := raw.(map[string]interface{}); ok {
			props = m
		}
	}

	return ReconstructSynapse(
		e.ID(), from, to, roleStr, Direction(dirStr),
		order, weight, props,
		e.CreatedAt(), e.UpdatedAt(), e.DeletedAt(),
	)
}

func endpointFromAttribute(e *Entity, key string) (valueobjects.EntityID, error) {
	raw, ok := e.Attribute(key)
	if !ok {
		return valueobjects.EntityID{}, pkgerrors.NewValidationError("synapse envelope is missing endpoint " + key)
	}
	str, ok := raw.(string)
	if !ok {
		return valueobjects.EntityID{}, pkgerrors.NewValidationError("synapse endpoint " + key + " must be a string id")
	}
	id, err := valueobjects.NewEntityIDFromString(str)
	if err != nil {
		return valueobjects.EntityID{}, pkgerrors.NewValidationError("synapse endpoint " + key + " is not a valid id")
	}
	return id, nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Synapse) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Synapse) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

func (s *Synapse) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}
