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

// UpdateEntityHandler applies attribute changes and edge operations to
// an existing entity in one transaction. Edge creations re-run full
// rule validation; updates and deletes address existing synapse ids.
type UpdateEntityHandler struct {
	rules       *registry.Registry
	entityRepo  ports.EntityRepository
	synapseRepo ports.SynapseRepository
	uowFactory  ports.UnitOfWorkFactory
	gate        ports.WriteGate
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewUpdateEntityHandler creates a new handler instance
func NewUpdateEntityHandler(
	rules *registry.Registry,
	entityRepo ports.EntityRepository,
	synapseRepo ports.SynapseRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *UpdateEntityHandler {
	return &UpdateEntityHandler{
		rules:       rules,
		entityRepo:  entityRepo,
		synapseRepo: synapseRepo,
		uowFactory:  uowFactory,
		gate:        gate,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the update entity command
func (h *UpdateEntityHandler) Handle(ctx context.Context, cmd commands.UpdateEntityCommand) (*entities.Entity, error) {
	if !h.gate.IsWritePermitted(ctx) {
		return nil, pkgerrors.NewWriteNotPermittedError()
	}

	id, err := valueobjects.NewEntityIDFromString(cmd.EntityID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("entity id is not a valid raw id")
	}

	entity, err := h.entityRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if len(cmd.Attributes) > 0 {
		if err := entity.MergeAttributes(cmd.Attributes); err != nil {
			return nil, err
		}
	}
	if cmd.ActorID != "" {
		actor, err := valueobjects.NewEntityIDFromString(cmd.ActorID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("actor id is not a valid raw id")
		}
		entity.SetUpdatedBy(actor)
	}

	planner := newEdgePlanner(h.rules, h.entityRepo)
	created, err := planner.planEdges(ctx, entity, cmd.EdgeOps.Create)
	if err != nil {
		return nil, err
	}

	updated, err := h.loadSynapseUpdates(ctx, cmd.EdgeOps.Update)
	if err != nil {
		return nil, err
	}
	deleted, err := h.loadSynapseDeletes(ctx, cmd.EdgeOps.Delete)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	if err := uow.RegisterEntitySave(entity); err != nil {
		uow.Rollback()
		return nil, err
	}
	for _, synapse := range created {
		if err := uow.RegisterSynapseCreate(synapse); err != nil {
			uow.Rollback()
			return nil, err
		}
	}
	for _, synapse := range updated {
		if err := uow.RegisterSynapseSave(synapse); err != nil {
			uow.Rollback()
			return nil, err
		}
	}
	for _, synapse := range deleted {
		if err := uow.RegisterSynapseDelete(synapse); err != nil {
			uow.Rollback()
			return nil, err
		}
	}

	collectEvents(uow, entity, created, updated, deleted)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishCommitted(ctx, h.publisher, uow, h.logger)
	entity.MarkEventsAsCommitted()

	h.logger.Info("entity updated",
		zap.String("entityId", entity.ID().String()),
		zap.Int("edgesCreated", len(created)),
		zap.Int("edgesUpdated", len(updated)),
		zap.Int("edgesDeleted", len(deleted)),
	)
	return entity, nil
}

func (h *UpdateEntityHandler) loadSynapseUpdates(ctx context.Context, updates []commands.SynapseUpdate) ([]*entities.Synapse, error) {
	synapses := make([]*entities.Synapse, 0, len(updates))
	for _, upd := range updates {
		id, err := valueobjects.NewEntityIDFromString(upd.SynapseID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("synapse id is not a valid raw id")
		}
		synapse, err := h.synapseRepo.GetByID(ctx, id, false)
		if err != nil {
			return nil, err
		}
		if upd.Order != nil {
			synapse.SetOrder(*upd.Order)
		}
		if upd.Weight != nil {
			synapse.SetWeight(*upd.Weight)
		}
		if len(upd.Props) > 0 {
			if err := synapse.MergeProps(upd.Props); err != nil {
				return nil, err
			}
		}
		synapses = append(synapses, synapse)
	}
	return synapses, nil
}

func (h *UpdateEntityHandler) loadSynapseDeletes(ctx context.Context, ids []string) ([]*entities.Synapse, error) {
	synapses := make([]*entities.Synapse, 0, len(ids))
	for _, raw := range ids {
		id, err := valueobjects.NewEntityIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewValidationError("synapse id is not a valid raw id")
		}
		synapse, err := h.synapseRepo.GetByID(ctx, id, false)
		if err != nil {
			return nil, err
		}
		synapse.SoftDelete()
		synapses = append(synapses, synapse)
	}
	return synapses, nil
}

func collectEvents(uow ports.UnitOfWork, entity *entities.Entity, groups ...[]*entities.Synapse) {
	for _, event := range entity.GetUncommittedEvents() {
		uow.RegisterEvent(event)
	}
	for _, group := range groups {
		for _, synapse := range group {
			for _, event := range synapse.GetUncommittedEvents() {
				uow.RegisterEvent(event)
			}
		}
	}
}
