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

// CreateSynapseHandler handles standalone synapse creation, single and
// batch. Batches are all-or-nothing.
type CreateSynapseHandler struct {
	rules      *registry.Registry
	entityRepo ports.EntityRepository
	uowFactory ports.UnitOfWorkFactory
	gate       ports.WriteGate
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewCreateSynapseHandler creates a new handler instance
func NewCreateSynapseHandler(
	rules *registry.Registry,
	entityRepo ports.EntityRepository,
	uowFactory ports.UnitOfWorkFactory,
	gate ports.WriteGate,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateSynapseHandler {
	return &CreateSynapseHandler{
		rules:      rules,
		entityRepo: entityRepo,
		uowFactory: uowFactory,
		gate:       gate,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the single synapse command
func (h *CreateSynapseHandler) Handle(ctx context.Context, cmd commands.CreateSynapseCommand) (*entities.Synapse, error) {
	synapses, err := h.HandleBatch(ctx, commands.CreateSynapsesBatchCommand{
		Requests: []commands.SynapseRequest{cmd.SynapseRequest},
		ActorID:  cmd.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return synapses[0], nil
}

// HandleBatch executes the batch command: every request is validated
// up front, then all synapses are written in one transaction.
func (h *CreateSynapseHandler) HandleBatch(ctx context.Context, cmd commands.CreateSynapsesBatchCommand) ([]*entities.Synapse, error) {
	if !h.gate.IsWritePermitted(ctx) {
		return nil, pkgerrors.NewWriteNotPermittedError()
	}

	synapses := make([]*entities.Synapse, 0, len(cmd.Requests))
	for _, req := range cmd.Requests {
		synapse, err := h.planRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		synapses = append(synapses, synapse)
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
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
	for _, synapse := range synapses {
		synapse.MarkEventsAsCommitted()
	}

	h.logger.Info("synapses created", zap.Int("count", len(synapses)))
	return synapses, nil
}

func (h *CreateSynapseHandler) planRequest(ctx context.Context, req commands.SynapseRequest) (*entities.Synapse, error) {
	id, err := valueobjects.NewEntityIDFromString(req.SynapseID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("synapse id is not a valid raw id")
	}
	from, err := valueobjects.NewEntityIDFromString(req.From)
	if err != nil {
		return nil, pkgerrors.NewValidationError("synapse from endpoint is not a valid raw id")
	}
	to, err := valueobjects.NewEntityIDFromString(req.To)
	if err != nil {
		return nil, pkgerrors.NewValidationError("synapse to endpoint is not a valid raw id")
	}
	if from.Equals(to) {
		return nil, pkgerrors.NewSelfLoopError(from.String())
	}

	fromEntity, err := h.entityRepo.GetByID(ctx, from, false)
	if err != nil {
		return nil, err
	}
	toEntity, err := h.entityRepo.GetByID(ctx, to, false)
	if err != nil {
		return nil, err
	}

	if err := h.rules.Validate(fromEntity.Kind(), toEntity.Kind(), req.Role, entities.Direction(req.Direction)); err != nil {
		return nil, err
	}

	opts := synapseOptions(req.Order, req.Weight, req.Props)
	return entities.NewSynapseWithID(id, from, to, req.Role, entities.Direction(req.Direction), opts...)
}
