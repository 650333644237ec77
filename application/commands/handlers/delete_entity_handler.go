package handlers

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// DeleteEntityHandler soft-deletes an entity together with every live
// synapse touching it, releasing their uniqueness reservations in the
// same transaction.
type DeleteEntityHandler struct {
	entityRepo  ports.EntityRepository
	synapseRepo ports.SynapseRepository
	uowFactory  ports.UnitOfWorkFactory
	gate        ports.WriteGate
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewDeleteEntityHandler creates a new handler instance
func NewDeleteEntityHandler(
	entityRepo ports.EntityRepository,
	synapseRepo ports.SynapseRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteEntityHandler {
	return &DeleteEntityHandler{
		entityRepo:  entityRepo,
		synapseRepo: synapseRepo,
		uowFactory:  uowFactory,
		gate:        gate,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the delete entity command
func (h *DeleteEntityHandler) Handle(ctx context.Context, cmd commands.DeleteEntityCommand) error {
	if !h.gate.IsWritePermitted(ctx) {
		return pkgerrors.NewWriteNotPermittedError()
	}

	id, err := valueobjects.NewEntityIDFromString(cmd.EntityID)
	if err != nil {
		return pkgerrors.NewValidationError("entity id is not a valid raw id")
	}

	entity, err := h.entityRepo.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !entity.SoftDelete() {
		// already deleted, nothing to write
		return nil
	}
	if cmd.ActorID != "" {
		if actor, err := valueobjects.NewEntityIDFromString(cmd.ActorID); err == nil {
			entity.SetUpdatedBy(actor)
		}
	}

	touching, err := h.synapseRepo.GetByEndpoint(ctx, id, false)
	if err != nil {
		return err
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	if err := uow.RegisterEntitySave(entity); err != nil {
		uow.Rollback()
		return err
	}
	for _, synapse := range touching {
		if !synapse.SoftDelete() {
			continue
		}
		if err := uow.RegisterSynapseDelete(synapse); err != nil {
			uow.Rollback()
			return err
		}
	}
	collectEvents(uow, entity, touching)

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	publishCommitted(ctx, h.publisher, uow, h.logger)
	entity.MarkEventsAsCommitted()

	h.logger.Info("entity soft-deleted",
		zap.String("entityId", id.String()),
		zap.Int("synapsesDeleted", len(touching)),
	)
	return nil
}

// RestoreEntityHandler clears an entity's soft-delete mark. Synapses
// deleted alongside the entity stay deleted; recreating them is an
// explicit caller decision.
type RestoreEntityHandler struct {
	entityRepo ports.EntityRepository
	uowFactory ports.UnitOfWorkFactory
	gate       ports.WriteGate
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewRestoreEntityHandler creates a new handler instance
func NewRestoreEntityHandler(
	entityRepo ports.EntityRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *RestoreEntityHandler {
	return &RestoreEntityHandler{
		entityRepo: entityRepo,
		uowFactory: uowFactory,
		gate:       gate,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the restore entity command
func (h *RestoreEntityHandler) Handle(ctx context.Context, cmd commands.RestoreEntityCommand) (*entities.Entity, error) {
	if !h.gate.IsWritePermitted(ctx) {
		return nil, pkgerrors.NewWriteNotPermittedError()
	}

	id, err := valueobjects.NewEntityIDFromString(cmd.EntityID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("entity id is not a valid raw id")
	}

	entity, err := h.entityRepo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !entity.Restore() {
		// already live
		return entity, nil
	}
	if cmd.ActorID != "" {
		if actor, err := valueobjects.NewEntityIDFromString(cmd.ActorID); err == nil {
			entity.SetUpdatedBy(actor)
		}
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.RegisterEntitySave(entity); err != nil {
		uow.Rollback()
		return nil, err
	}
	collectEvents(uow, entity)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishCommitted(ctx, h.publisher, uow, h.logger)
	entity.MarkEventsAsCommitted()

	h.logger.Info("entity restored", zap.String("entityId", id.String()))
	return entity, nil
}
