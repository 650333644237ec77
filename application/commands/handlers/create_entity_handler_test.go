package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/registry"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/tests/fixtures"
	"cortex-backend/tests/mocks"
)

func TestCreateEntityHandler_Success(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)
	publisher := new(mocks.MockEventPublisher)

	author := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, author.ID(), false).Return(author, nil)
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterEntitySave", mock.AnythingOfType("*entities.Entity")).Return(nil)
	uow.On("RegisterSynapseCreate", mock.AnythingOfType("*entities.Synapse")).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(nil)
	uow.On("CommittedEvents").Return(nil)

	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		entityRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		publisher,
		zap.NewNop(),
	)

	cmd := commands.CreateEntityCommand{
		EntityID:   valueobjects.NewEntityID().String(),
		Kind:       "post",
		Attributes: map[string]interface{}{"title": "hello"},
		Edges: []commands.EdgeRequest{
			// from defaults to the new entity; author is the target
			{From: author.ID().String(), Role: registry.RoleAuthor, Direction: "out"},
		},
	}

	entity, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, entities.KindPost, entity.Kind())
	assert.Equal(t, cmd.EntityID, entity.ID().String())

	uow.AssertExpectations(t)
	entityRepo.AssertExpectations(t)
}

func TestCreateEntityHandler_WriteNotPermitted(t *testing.T) {
	ctx := context.Background()
	gate := new(mocks.MockWriteGate)
	gate.On("IsWritePermitted", ctx).Return(false)

	uow := new(mocks.MockUnitOfWork)
	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		new(mocks.MockEntityRepository),
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	_, err := handler.Handle(ctx, commands.CreateEntityCommand{
		EntityID: valueobjects.NewEntityID().String(),
		Kind:     "post",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeWriteNotPermitted))
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestCreateEntityHandler_InvalidEdgeAbortsBeforePersistence(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	other := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()
	author := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, author.ID(), false).Return(author, nil)
	entityRepo.On("GetByID", ctx, other.ID(), false).Return(other, nil)

	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		entityRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	// one valid edge plus one violating the rule table: nothing may be staged
	cmd := commands.CreateEntityCommand{
		EntityID: valueobjects.NewEntityID().String(),
		Kind:     "post",
		Edges: []commands.EdgeRequest{
			{From: author.ID().String(), Role: registry.RoleAuthor, Direction: "out"},
			{From: other.ID().String(), Role: registry.RoleAuthor, Direction: "out"},
		},
	}

	_, err := handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoMatchingRule))
	uow.AssertNotCalled(t, "Begin", mock.Anything)
	uow.AssertNotCalled(t, "RegisterEntitySave", mock.Anything)
}

func TestCreateEntityHandler_UnknownKind(t *testing.T) {
	ctx := context.Background()
	gate := new(mocks.MockWriteGate)
	gate.On("IsWritePermitted", ctx).Return(true)

	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		new(mocks.MockEntityRepository),
		&mocks.MockUnitOfWorkFactory{UoW: new(mocks.MockUnitOfWork)},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	_, err := handler.Handle(ctx, commands.CreateEntityCommand{
		EntityID: valueobjects.NewEntityID().String(),
		Kind:     "spaceship",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownKind))
}

func TestCreateEntityHandler_SynthesizesAuthorshipEdge(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	actor := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	entityID := valueobjects.NewEntityID()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, actor.ID(), false).Return(actor, nil)
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterEntitySave", mock.Anything).Return(nil)
	uow.On("RegisterSynapseCreate", mock.MatchedBy(func(s *entities.Synapse) bool {
		return s.Role() == registry.RoleCreatedBy &&
			s.From().Equals(entityID) &&
			s.To().Equals(actor.ID())
	})).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(nil)
	uow.On("CommittedEvents").Return(nil)

	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		entityRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	entity, err := handler.Handle(ctx, commands.CreateEntityCommand{
		EntityID: entityID.String(),
		Kind:     "post",
		ActorID:  actor.ID().String(),
	})
	require.NoError(t, err)
	require.NotNil(t, entity.CreatedBy())
	assert.True(t, entity.CreatedBy().Equals(actor.ID()))
	uow.AssertExpectations(t)
}

func TestCreateEntityHandler_SkipsAuthorshipForUnknownPrincipal(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	actorID := valueobjects.NewEntityID()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, actorID, false).Return(nil, pkgerrors.NewNotFoundError("entity"))
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterEntitySave", mock.Anything).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(nil)
	uow.On("CommittedEvents").Return(nil)

	handler := NewCreateEntityHandler(
		registry.NewDefaultRegistry(),
		entityRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	_, err := handler.Handle(ctx, commands.CreateEntityCommand{
		EntityID: valueobjects.NewEntityID().String(),
		Kind:     "post",
		ActorID:  actorID.String(),
	})
	require.NoError(t, err)
	uow.AssertNotCalled(t, "RegisterSynapseCreate", mock.Anything)
}
