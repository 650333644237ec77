package ports

import (
	"context"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/domain/events"
)

// EntityRepository defines the interface for entity persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation.
type EntityRepository interface {
	// GetByID retrieves an entity by its id. Soft-deleted entities are
	// treated as absent unless includeDeleted is set.
	GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Entity, error)

	// GetByIDs retrieves multiple entities in one batch. Missing ids
	// are silently omitted from the result, as are soft-deleted ones
	// unless includeDeleted is set.
	GetByIDs(ctx context.Context, ids []valueobjects.EntityID, includeDeleted bool) ([]*entities.Entity, error)

	// ListByKind retrieves live entities of one kind, newest first
	ListByKind(ctx context.Context, kind entities.Kind, page Pagination) ([]*entities.Entity, string, error)
}

// SynapseRepository defines the interface for synapse reads
type SynapseRepository interface {
	// GetByID retrieves a synapse by its id. Soft-deleted synapses are
	// treated as absent unless includeDeleted is set.
	GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Synapse, error)

	// GetByEndpoint retrieves all synapses where id is either endpoint.
	// Soft-deleted synapses are excluded unless includeDeleted is set.
	GetByEndpoint(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) ([]*entities.Synapse, error)

	// ExistsByKey reports whether a live synapse with the exact
	// (from, to, role) tuple exists.
	ExistsByKey(ctx context.Context, from, to valueobjects.EntityID, role string) (bool, error)
}

// UnitOfWork defines a transaction boundary. Registered writes are
// staged and applied atomically on Commit; nothing is persisted if any
// part of the transaction fails.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// RegisterEntitySave stages an entity create or update
	RegisterEntitySave(entity *entities.Entity) error

	// RegisterSynapseCreate stages a synapse insert together with its
	// uniqueness reservation on (from, to, role).
	RegisterSynapseCreate(synapse *entities.Synapse) error

	// RegisterSynapseSave stages an update to an existing synapse
	RegisterSynapseSave(synapse *entities.Synapse) error

	// RegisterSynapseDelete stages a synapse soft-delete, releasing its
	// uniqueness reservation.
	RegisterSynapseDelete(synapse *entities.Synapse) error

	// RegisterEvent stages a domain event for post-commit publication
	RegisterEvent(event events.DomainEvent)

	// Commit applies all staged writes atomically
	Commit(ctx context.Context) error

	// Rollback discards all staged writes
	Rollback() error

	// CommittedEvents returns the staged events after a successful
	// Commit, for post-commit publication.
	CommittedEvents() []events.DomainEvent
}

// UnitOfWorkFactory creates a fresh unit of work per operation
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// WriteGate decides whether the acting principal may mutate the graph
type WriteGate interface {
	// IsWritePermitted reports whether writes are allowed for the
	// request in ctx.
	IsWritePermitted(ctx context.Context) bool
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Pagination carries cursor-based paging parameters
type Pagination struct {
	Limit  int
	Cursor string
}
