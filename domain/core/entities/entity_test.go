package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

func TestNewEntity(t *testing.T) {
	e, err := NewEntity(KindPost, map[string]interface{}{"title": "hello"})
	require.NoError(t, err)

	assert.False(t, e.ID().IsZero())
	assert.Equal(t, KindPost, e.Kind())
	assert.False(t, e.IsDeleted())
	assert.Nil(t, e.DeletedAt())
	assert.Equal(t, 1, e.Version())
	assert.False(t, e.CreatedAt().IsZero())
	assert.Equal(t, e.CreatedAt(), e.UpdatedAt())

	title, ok := e.Attribute("title")
	require.True(t, ok)
	assert.Equal(t, "hello", title)

	events := e.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "entity.created", events[0].GetEventType())
}

func TestNewEntity_UnknownKind(t *testing.T) {
	_, err := NewEntity(Kind("spaceship"), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownKind))
}

func TestEntity_MergeAttributes(t *testing.T) {
	e, err := NewEntity(KindPost, map[string]interface{}{
		"title": "hello",
		"draft": true,
	})
	require.NoError(t, err)

	err = e.MergeAttributes(map[string]interface{}{
		"title": "updated",
		"draft": nil,
		"tags":  []interface{}{"go"},
	})
	require.NoError(t, err)

	title, _ := e.Attribute("title")
	assert.Equal(t, "updated", title)
	_, ok := e.Attribute("draft")
	assert.False(t, ok, "nil value should delete the key")
	_, ok = e.Attribute("tags")
	assert.True(t, ok)
	assert.Equal(t, 2, e.Version())
}

func TestEntity_MergeAttributes_Deleted(t *testing.T) {
	e, err := NewEntity(KindPost, nil)
	require.NoError(t, err)
	require.True(t, e.SoftDelete())

	err = e.MergeAttributes(map[string]interface{}{"title": "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEntity_SoftDeleteAndRestore(t *testing.T) {
	e, err := NewEntity(KindComment, nil)
	require.NoError(t, err)

	assert.True(t, e.SoftDelete())
	assert.True(t, e.IsDeleted())
	require.NotNil(t, e.DeletedAt())

	// idempotent
	assert.False(t, e.SoftDelete())

	assert.True(t, e.Restore())
	assert.False(t, e.IsDeleted())
	assert.Nil(t, e.DeletedAt())
	assert.False(t, e.Restore())
}

func TestEntity_Authorship(t *testing.T) {
	e, err := NewEntity(KindPost, nil)
	require.NoError(t, err)

	actor := valueobjects.NewEntityID()
	e.SetOwner(actor)
	e.SetCreatedBy(actor)
	e.SetUpdatedBy(actor)

	require.NotNil(t, e.OwnerID())
	assert.True(t, e.OwnerID().Equals(actor))
	require.NotNil(t, e.CreatedBy())
	assert.True(t, e.CreatedBy().Equals(actor))
	require.NotNil(t, e.UpdatedBy())
	assert.True(t, e.UpdatedBy().Equals(actor))
}

func TestReconstructEntity(t *testing.T) {
	id := valueobjects.NewEntityID()
	created := time.Now().UTC().Add(-time.Hour)
	updated := time.Now().UTC()

	e, err := ReconstructEntity(id, KindUser, map[string]interface{}{"name": "ada"}, nil, nil, nil, created, updated, nil, 3)
	require.NoError(t, err)

	assert.True(t, e.ID().Equals(id))
	assert.Equal(t, 3, e.Version())
	assert.Equal(t, created, e.CreatedAt())
	assert.Empty(t, e.GetUncommittedEvents(), "reconstruction must not raise events")
}

func TestEntity_Attributes_Copy(t *testing.T) {
	e, err := NewEntity(KindPost, map[string]interface{}{"title": "hello"})
	require.NoError(t, err)

	attrs := e.Attributes()
	attrs["title"] = "mutated"

	title, _ := e.Attribute("title")
	assert.Equal(t, "hello", title, "getter must return a copy")
}
