package handlers

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/registry"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// CreateEntityHandler coordinates entity creation with its initial
// edges: validate everything first, then persist entity and synapses in
// one transaction. Nothing is written when any part fails.
type CreateEntityHandler struct {
	rules      *registry.Registry
	entityRepo ports.EntityRepository
	uowFactory ports.UnitOfWorkFactory
	gate       ports.WriteGate
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewCreateEntityHandler creates a new handler instance
func NewCreateEntityHandler(
	rules *registry.Registry,
	entityRepo ports.EntityRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateEntityHandler {
	return &CreateEntityHandler{
		rules:      rules,
		entityRepo: entityRepo,
		uowFactory: uowFactory,
		gate:       gate,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the create entity command
func (h *CreateEntityHandler) Handle(ctx context.Context, cmd commands.CreateEntityCommand) (*entities.Entity, error) {
	if !h.gate.IsWritePermitted(ctx) {
		return nil, pkgerrors.NewWriteNotPermittedError()
	}

	id, err := valueobjects.NewEntityIDFromString(cmd.EntityID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("entity id is not a valid raw id")
	}

	entity, err := entities.NewEntityWithID(id, entities.Kind(cmd.Kind), cmd.Attributes)
	if err != nil {
		return nil, err
	}

	if cmd.ActorID != "" {
		actor, err := valueobjects.NewEntityIDFromString(cmd.ActorID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("actor id is not a valid raw id")
		}
		entity.SetOwner(actor)
		entity.SetCreatedBy(actor)
		entity.SetUpdatedBy(actor)
	}

	planner := newEdgePlanner(h.rules, h.entityRepo)
	synapses, err := planner.planEdges(ctx, entity, cmd.Edges)
	if err != nil {
		return nil, err
	}

	if authorship, err := h.synthesizeAuthorship(ctx, entity, synapses); err != nil {
		return nil, err
	} else if authorship != nil {
		synapses = append(synapses, authorship)
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	if err := uow.RegisterEntitySave(entity); err != nil {
		uow.Rollback()
		return nil, err
	}
	for _, event := range entity.GetUncommittedEvents() {
		uow.RegisterEvent(event)
	}
	for _, synapse := range synapses {
		if err := uow.RegisterSynapseCreate(synapse); err != nil {
			uow.Rollback()
			return nil, err
		}
		for _, event := range synapse.GetUncommittedEvents() {
			uow.RegisterEvent(event)
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishCommitted(ctx, h.publisher, uow, h.logger)
	entity.MarkEventsAsCommitted()
	for _, synapse := range synapses {
		synapse.MarkEventsAsCommitted()
	}

	h.logger.Info("entity created",
		zap.String("entityId", entity.ID().String()),
		zap.String("kind", string(entity.Kind())),
		zap.Int("synapses", len(synapses)),
	)
	return entity, nil
}

// synthesizeAuthorship builds the automatic created_by edge from the
// new entity to the acting principal. Synthesis is skipped when the
// entity is its own creator, when the caller already requested an
// identical edge, or when the principal does not resolve to a stored
// entity.
func (h *CreateEntityHandler) synthesizeAuthorship(ctx context.Context, entity *entities.Entity, planned []*entities.Synapse) (*entities.Synapse, error) {
	createdBy := entity.CreatedBy()
	if createdBy == nil || createdBy.Equals(entity.ID()) {
		return nil, nil
	}
	actor := *createdBy

	for _, synapse := range planned {
		if synapse.Role() == registry.RoleCreatedBy && synapse.From().Equals(entity.ID()) && synapse.To().Equals(actor) {
			return nil, nil
		}
	}

	actorEntity, err := h.entityRepo.GetByID(ctx, actor, false)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			h.logger.Debug("authorship edge skipped, principal not stored",
				zap.String("actorId", actor.String()))
			return nil, nil
		}
		return nil, err
	}

	if err := h.rules.Validate(entity.Kind(), actorEntity.Kind(), registry.RoleCreatedBy, entities.DirectionOut); err != nil {
		h.logger.Debug("authorship edge skipped, no rule for principal kind",
			zap.String("entityKind", string(entity.Kind())),
			zap.String("actorKind", string(actorEntity.Kind())),
		)
		return nil, nil
	}

	return entities.NewSynapse(entity.ID(), actor, registry.RoleCreatedBy, entities.DirectionOut)
}
