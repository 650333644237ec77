package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/application/ports"
	"cortex-backend/application/queries"
	"cortex-backend/domain/core/entities"
	"cortex-backend/tests/fixtures"
	"cortex-backend/tests/mocks"
)

func TestListEntitiesHandler_PassesPageParamsAndCursor(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)

	posts := []*entities.Entity{
		fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild(),
		fixtures.NewEntityBuilder().WithKind(entities.KindPost).MustBuild(),
	}
	entityRepo.On("ListByKind", ctx, entities.KindPost, ports.Pagination{Limit: 2, Cursor: "abc"}).
		Return(posts, "next", nil)

	handler := NewListEntitiesHandler(entityRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.ListEntitiesQuery{Kind: "post", Limit: 2, Cursor: "abc"})
	require.NoError(t, err)
	assert.Len(t, result.Entities, 2)
	assert.Equal(t, "next", result.NextCursor)
}

func TestListEntitiesHandler_DefaultsLimit(t *testing.T) {
	ctx := context.Background()
	entityRepo := new(mocks.MockEntityRepository)

	entityRepo.On("ListByKind", ctx, entities.KindUser, ports.Pagination{Limit: defaultPageLimit}).
		Return([]*entities.Entity{}, "", nil)

	handler := NewListEntitiesHandler(entityRepo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.ListEntitiesQuery{Kind: "user"})
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.Empty(t, result.NextCursor)
	entityRepo.AssertExpectations(t)
}
