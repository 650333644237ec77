package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/entities"
	pkgerrors "cortex-backend/pkg/errors"
)

func TestRegistry_Validate(t *testing.T) {
	r := NewDefaultRegistry()

	err := r.Validate(entities.KindUser, entities.KindPost, RoleAuthor, entities.DirectionOut)
	assert.NoError(t, err)

	err = r.Validate(entities.KindPost, entities.KindPost, RoleAuthor, entities.DirectionOut)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoMatchingRule))
}

func TestRegistry_Validate_OffendingTuple(t *testing.T) {
	r := NewDefaultRegistry()

	err := r.Validate(entities.KindComment, entities.KindTag, RoleTaggedAs, entities.DirectionOut)
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "comment", appErr.Details["source_kind"])
	assert.Equal(t, "tag", appErr.Details["target_kind"])
	assert.Equal(t, RoleTaggedAs, appErr.Details["role"])
	assert.Equal(t, "out", appErr.Details["direction"])
}

func TestRegistry_Validate_UndirectedMatchesAnyDirection(t *testing.T) {
	r := NewDefaultRegistry()

	// post->post related is registered undirected
	assert.NoError(t, r.Validate(entities.KindPost, entities.KindPost, RoleRelated, entities.DirectionUndirected))
	assert.NoError(t, r.Validate(entities.KindPost, entities.KindPost, RoleRelated, entities.DirectionOut))
	assert.NoError(t, r.Validate(entities.KindPost, entities.KindPost, RoleRelated, entities.DirectionIn))
}

func TestRegistry_Validate_DirectedRequiresExactDirection(t *testing.T) {
	r := NewDefaultRegistry()

	err := r.Validate(entities.KindUser, entities.KindPost, RoleAuthor, entities.DirectionIn)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoMatchingRule))
}

func TestRegistry_RulesFor(t *testing.T) {
	r := NewDefaultRegistry()

	userRules := r.RulesFor(entities.KindUser)
	assert.NotEmpty(t, userRules)
	for _, rule := range userRules {
		assert.Equal(t, entities.KindUser, rule.SourceKind)
	}

	assert.Empty(t, r.RulesFor(entities.Kind("spaceship")), "unknown kinds return an empty list")
}

func TestRegistry_RulesFor_ReturnsCopy(t *testing.T) {
	r := NewDefaultRegistry()

	rules := r.RulesFor(entities.KindUser)
	require.NotEmpty(t, rules)
	rules[0].Role = "mutated"

	again := r.RulesFor(entities.KindUser)
	assert.NotEqual(t, "mutated", again[0].Role)
}

func TestRegistry_MergesContributions(t *testing.T) {
	a := []Rule{{SourceKind: entities.KindUser, TargetKind: entities.KindPost, Role: "likes", Direction: entities.DirectionOut}}
	b := []Rule{{SourceKind: entities.KindUser, TargetKind: entities.KindComment, Role: "likes", Direction: entities.DirectionOut}}

	r := NewRegistry(a, b)
	assert.Len(t, r.RulesFor(entities.KindUser), 2)
}
