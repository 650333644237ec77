package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/application/queries"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/registry"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
	"cortex-backend/tests/fixtures"
	"cortex-backend/tests/mocks"
)

func TestGetEntityHandler_AuthorNeighborhood(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()
	authored := fixtures.NewSynapseBuilder().
		WithEndpoints(user.ID(), post.ID()).
		WithRole(registry.RoleAuthor).
		WithDirection(entities.DirectionOut).
		MustBuild()

	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	synapseRepo.On("GetByEndpoint", ctx, post.ID(), false).Return([]*entities.Synapse{authored}, nil)
	entityRepo.On("GetByIDs", ctx, []valueobjects.EntityID{user.ID()}, false).
		Return([]*entities.Entity{user}, nil)

	handler := NewGetEntityHandler(entityRepo, synapseRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: post.ID().String()})
	require.NoError(t, err)

	// relatives hold the author entity and the synapse envelope
	require.Len(t, result.Relatives, 2)
	assert.True(t, result.Relatives[0].ID().Equals(user.ID()))
	assert.Equal(t, entities.KindSynapse, result.Relatives[1].Kind())

	// direction normalized from the post's perspective is incoming
	byDirection, ok := result.RelativesByRole[registry.RoleAuthor]
	require.True(t, ok)
	require.Len(t, byDirection[entities.DirectionIn], 1)
	assert.True(t, byDirection[entities.DirectionIn][0].Equals(user.ID()))

	assert.ElementsMatch(t,
		[]valueobjects.EntityID{user.ID(), authored.ID()},
		result.RelativeIDs,
	)
}

func TestGetEntityHandler_NotFound(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	id := valueobjects.NewEntityID()
	entityRepo.On("GetByID", ctx, id, false).Return(nil, pkgerrors.NewNotFoundError("entity"))

	handler := NewGetEntityHandler(entityRepo, new(mocks.MockSynapseRepository), zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: id.String()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetEntityHandler_EmptyNeighborhood(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)

	lonely := fixtures.NewEntityBuilder().WithKind(entities.KindTag).MustBuild()

	entityRepo.On("GetByID", ctx, lonely.ID(), false).Return(lonely, nil)
	synapseRepo.On("GetByEndpoint", ctx, lonely.ID(), false).Return([]*entities.Synapse{}, nil)
	entityRepo.On("GetByIDs", ctx, mock.Anything, false).Return([]*entities.Entity{}, nil)

	handler := NewGetEntityHandler(entityRepo, synapseRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: lonely.ID().String()})
	require.NoError(t, err)
	assert.Empty(t, result.Relatives)
	assert.Empty(t, result.RelativesByRole)
	assert.Empty(t, result.RelativeIDs)
}

func TestGetEntityHandler_DedupAcrossRoles(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()

	authored := fixtures.NewSynapseBuilder().
		WithEndpoints(user.ID(), post.ID()).
		WithRole(registry.RoleAuthor).
		WithDirection(entities.DirectionOut).
		MustBuild()
	created := fixtures.NewSynapseBuilder().
		WithEndpoints(post.ID(), user.ID()).
		WithRole(registry.RoleCreatedBy).
		WithDirection(entities.DirectionOut).
		MustBuild()

	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	synapseRepo.On("GetByEndpoint", ctx, post.ID(), false).
		Return([]*entities.Synapse{authored, created}, nil)
	// the user is a candidate exactly once despite two synapses
	entityRepo.On("GetByIDs", ctx, []valueobjects.EntityID{user.ID()}, false).
		Return([]*entities.Entity{user}, nil)

	handler := NewGetEntityHandler(entityRepo, synapseRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: post.ID().String()})
	require.NoError(t, err)

	entityCount := 0
	for _, relative := range result.Relatives {
		if relative.ID().Equals(user.ID()) {
			entityCount++
		}
	}
	assert.Equal(t, 1, entityCount, "entity appears once despite two synapses")

	// both roles appear in the grouping index
	assert.Contains(t, result.RelativesByRole, registry.RoleAuthor)
	assert.Contains(t, result.RelativesByRole, registry.RoleCreatedBy)
	assert.Len(t, result.RelativesByRole[registry.RoleAuthor][entities.DirectionIn], 1)
	assert.Len(t, result.RelativesByRole[registry.RoleCreatedBy][entities.DirectionOut], 1)
}

func TestGetEntityHandler_AttributeReferences(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)

	author := fixtures.NewEntityBuilder().WithKind(entities.KindUser).MustBuild()
	ghost := valueobjects.NewEntityID() // id-shaped but resolves to nothing

	commentID := valueobjects.NewEntityID()
	comment := fixtures.NewEntityBuilder().
		WithID(commentID).
		WithKind(entities.KindComment).
		WithAttribute("authorId", author.ID().String()).
		WithAttribute("replyTo", ghost.String()).
		WithAttribute("selfRef", commentID.String()).
		MustBuild()

	entityRepo.On("GetByID", ctx, comment.ID(), false).Return(comment, nil)
	synapseRepo.On("GetByEndpoint", ctx, comment.ID(), false).Return([]*entities.Synapse{}, nil)
	entityRepo.On("GetByIDs", ctx, mock.MatchedBy(func(ids []valueobjects.EntityID) bool {
		// self-reference excluded; author and ghost requested
		for _, id := range ids {
			if id.Equals(comment.ID()) {
				return false
			}
		}
		return len(ids) == 2
	}), false).Return([]*entities.Entity{author}, nil)

	handler := NewGetEntityHandler(entityRepo, synapseRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: comment.ID().String()})
	require.NoError(t, err)

	// the unresolvable id is silently dropped
	require.Len(t, result.Relatives, 1)
	assert.True(t, result.Relatives[0].ID().Equals(author.ID()))
	assert.Empty(t, result.RelativesByRole)
}

func TestGetEntityHandler_IncludeDeleted(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)
	synapseRepo := new(mocks.MockSynapseRepository)

	user := fixtures.NewEntityBuilder().WithKind(entities.KindUser).Deleted().MustBuild()
	post := fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild()
	authored := fixtures.NewSynapseBuilder().
		WithEndpoints(user.ID(), post.ID()).
		WithRole(registry.RoleAuthor).
		WithDirection(entities.DirectionOut).
		MustBuild()

	// excluded by default
	entityRepo.On("GetByID", ctx, post.ID(), false).Return(post, nil)
	synapseRepo.On("GetByEndpoint", ctx, post.ID(), false).Return([]*entities.Synapse{authored}, nil)
	entityRepo.On("GetByIDs", ctx, []valueobjects.EntityID{user.ID()}, false).
		Return([]*entities.Entity{}, nil)

	// present when including deleted
	entityRepo.On("GetByID", ctx, post.ID(), true).Return(post, nil)
	synapseRepo.On("GetByEndpoint", ctx, post.ID(), true).Return([]*entities.Synapse{authored}, nil)
	entityRepo.On("GetByIDs", ctx, []valueobjects.EntityID{user.ID()}, true).
		Return([]*entities.Entity{user}, nil)

	handler := NewGetEntityHandler(entityRepo, synapseRepo, zap.NewNop())

	excluded, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: post.ID().String()})
	require.NoError(t, err)
	for _, relative := range excluded.Relatives {
		assert.False(t, relative.ID().Equals(user.ID()))
	}

	included, err := handler.Handle(ctx, queries.GetEntityQuery{EntityID: post.ID().String(), IncludeDeleted: true})
	require.NoError(t, err)
	found := false
	for _, relative := range included.Relatives {
		if relative.ID().Equals(user.ID()) {
			found = true
		}
	}
	assert.True(t, found)
}
