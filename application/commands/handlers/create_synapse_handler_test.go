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

func newSynapseHandler(entityRepo *mocks.MockEntityRepository, uow *mocks.MockUnitOfWork, gate *mocks.MockWriteGate) *CreateSynapseHandler {
	return NewCreateSynapseHandler(
		registry.NewDefaultRegistry(),
		entityRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)
}

func TestCreateSynapseHandler_Success(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, user.ID(), false).Return(user, nil)
	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterSynapseCreate", mock.AnythingOfType("*entities.Synapse")).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(nil)
	uow.On("CommittedEvents").Return(nil)

	handler := newSynapseHandler(entityRepo, uow, gate)

	synapseID := valueobjects.NewEntityID()
	synapse, err := handler.Handle(ctx, commands.CreateSynapseCommand{
		SynapseRequest: commands.SynapseRequest{
			SynapseID: synapseID.String(),
			From:      user.ID().String(),
			To:        post.ID().String(),
			Role:      registry.RoleAuthor,
			Direction: "out",
		},
	})
	require.NoError(t, err)
	assert.True(t, synapse.ID().Equals(synapseID))
	assert.Equal(t, registry.RoleAuthor, synapse.Role())
	uow.AssertExpectations(t)
}

func TestCreateSynapseHandler_SelfLoop(t *testing.T) {
	ctx := context.Background()
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)
	gate.On("IsWritePermitted", ctx).Return(true)

	handler := newSynapseHandler(new(mocks.MockEntityRepository), uow, gate)

	id := valueobjects.NewEntityID()
	_, err := handler.Handle(ctx, commands.CreateSynapseCommand{
		SynapseRequest: commands.SynapseRequest{
			SynapseID: valueobjects.NewEntityID().String(),
			From:      id.String(),
			To:        id.String(),
			Role:      registry.RoleRelated,
			Direction: "undirected",
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeSelfLoop))
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestCreateSynapseHandler_DuplicateSurfacedFromCommit(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, user.ID(), false).Return(user, nil)
	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterSynapseCreate", mock.Anything).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(pkgerrors.NewDuplicateRelationshipError(
		user.ID().String(), post.ID().String(), registry.RoleAuthor))

	handler := newSynapseHandler(entityRepo, uow, gate)

	_, err := handler.Handle(ctx, commands.CreateSynapseCommand{
		SynapseRequest: commands.SynapseRequest{
			SynapseID: valueobjects.NewEntityID().String(),
			From:      user.ID().String(),
			To:        post.ID().String(),
			Role:      registry.RoleAuthor,
			Direction: "out",
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDuplicateRelationship))
}

func TestCreateSynapseHandler_BatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()
	tag := fixtures.NewEntityBuilder().WithKind(entities.KindTag).MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, user.ID(), false).Return(user, nil)
	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	entityRepo.On("GetByID", ctx, tag.ID(), false).Return(tag, nil)

	handler := newSynapseHandler(entityRepo, uow, gate)

	// second request violates the rule table: even the valid first
	// request must not be staged
	_, err := handler.HandleBatch(ctx, commands.CreateSynapsesBatchCommand{
		Requests: []commands.SynapseRequest{
			{
				SynapseID: valueobjects.NewEntityID().String(),
				From:      user.ID().String(),
				To:        post.ID().String(),
				Role:      registry.RoleAuthor,
				Direction: "out",
			},
			{
				SynapseID: valueobjects.NewEntityID().String(),
				From:      user.ID().String(),
				To:        tag.ID().String(),
				Role:      registry.RoleAuthor,
				Direction: "out",
			},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoMatchingRule))
	uow.AssertNotCalled(t, "Begin", mock.Anything)
	uow.AssertNotCalled(t, "RegisterSynapseCreate", mock.Anything)
}

func TestDeleteEntityHandler_DeletesTouchingSynapses(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()
	touching := fixtures.NewSynapseBuilder().
		WithEndpoints(post.ID(), valueobjects.NewEntityID()).
		WithRole(registry.RoleTaggedAs).
		WithDirection(entities.DirectionOut).
		MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, post.ID(), true).Return(post, nil)
	synapseRepo.On("GetByEndpoint", ctx, post.ID(), false).Return([]*entities.Synapse{touching}, nil)
	uow.On("Begin", ctx).Return(nil)
	uow.On("RegisterEntitySave", mock.Anything).Return(nil)
	uow.On("RegisterSynapseDelete", touching).Return(nil)
	uow.On("RegisterEvent", mock.Anything).Return()
	uow.On("Commit", ctx).Return(nil)
	uow.On("CommittedEvents").Return(nil)

	handler := NewDeleteEntityHandler(
		entityRepo, synapseRepo,
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	err := handler.Handle(ctx, commands.DeleteEntityCommand{EntityID: post.ID().String()})
	require.NoError(t, err)
	assert.True(t, post.IsDeleted())
	assert.True(t, touching.IsDeleted())
	uow.AssertExpectations(t)
}

func TestDeleteEntityHandler_IdempotentOnDeleted(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	uow := new(mocks.MockUnitOfWork)
	gate := new(mocks.MockWriteGate)

	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).Deleted().MustBuild()

	gate.On("IsWritePermitted", ctx).Return(true)
	entityRepo.On("GetByID", ctx, post.ID(), true).Return(post, nil)

	handler := NewDeleteEntityHandler(
		entityRepo, new(mocks.MockSynapseRepository),
		&mocks.MockUnitOfWorkFactory{UoW: uow},
		gate,
		new(mocks.MockEventPublisher),
		zap.NewNop(),
	)

	err := handler.Handle(ctx, commands.DeleteEntityCommand{EntityID: post.ID().String()})
	require.NoError(t, err)
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}
