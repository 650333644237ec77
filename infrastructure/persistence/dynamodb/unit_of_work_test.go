package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

func newTestSynapse(t *testing.T) *entities.Synapse {
	t.Helper()
	s, err := entities.NewSynapse(
		valueobjects.NewEntityID(),
		valueobjects.NewEntityID(),
		"author",
		entities.DirectionOut,
	)
	require.NoError(t, err)
	return s
}

func TestUnitOfWork_RequiresBegin(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())

	entity, err := entities.NewEntity(entities.KindPost, nil)
	require.NoError(t, err)

	assert.Error(t, uow.RegisterEntitySave(entity))
	assert.Error(t, uow.RegisterSynapseCreate(newTestSynapse(t)))
	assert.Error(t, uow.Commit(context.Background()))
}

func TestUnitOfWork_SynapseCreateStagesReservation(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))

	synapse := newTestSynapse(t)
	require.NoError(t, uow.RegisterSynapseCreate(synapse))

	// one put for the synapse, one conditional put for the key
	require.Len(t, uow.transactItems, 2)
	reservation := uow.transactItems[1].Put
	require.NotNil(t, reservation)
	assert.Equal(t, "attribute_not_exists(PK)", aws.ToString(reservation.ConditionExpression))
	assert.Same(t, synapse, uow.reservations[1])
}

func TestUnitOfWork_SynapseDeleteReleasesReservation(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))

	synapse := newTestSynapse(t)
	synapse.SoftDelete()
	require.NoError(t, uow.RegisterSynapseDelete(synapse))

	require.Len(t, uow.transactItems, 2)
	require.NotNil(t, uow.transactItems[0].Put)
	deletion := uow.transactItems[1].Delete
	require.NotNil(t, deletion)
	pk := deletion.Key["PK"].(*types.AttributeValueMemberS)
	assert.Equal(t, synapseKeyPK(synapse.From(), synapse.To(), synapse.Role()), pk.Value)
}

func TestUnitOfWork_MapCommitError_Duplicate(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))

	synapse := newTestSynapse(t)
	require.NoError(t, uow.RegisterSynapseCreate(synapse))

	cancelled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}

	err := uow.mapCommitError(cancelled)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDuplicateRelationship))

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, synapse.From().String(), appErr.Details["from"])
	assert.Equal(t, synapse.Role(), appErr.Details["role"])
}

func TestUnitOfWork_MapCommitError_OtherFailure(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))

	err := uow.mapCommitError(&types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("TransactionConflict")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTransactionAborted))
}

func TestUnitOfWork_CommittedEventsOnlyAfterCommit(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))

	entity, err := entities.NewEntity(entities.KindPost, nil)
	require.NoError(t, err)
	for _, event := range entity.GetUncommittedEvents() {
		uow.RegisterEvent(event)
	}

	assert.Nil(t, uow.CommittedEvents(), "events are hidden before commit")

	// an empty transaction commits without touching the client
	uow.transactItems = uow.transactItems[:0]
	require.NoError(t, uow.Commit(context.Background()))
	assert.Len(t, uow.CommittedEvents(), 1)
}

func TestUnitOfWork_RollbackClearsStagedWork(t *testing.T) {
	uow := NewUnitOfWork(nil, "graph", zap.NewNop())
	require.NoError(t, uow.Begin(context.Background()))
	require.NoError(t, uow.RegisterSynapseCreate(newTestSynapse(t)))

	require.NoError(t, uow.Rollback())
	assert.Empty(t, uow.transactItems)
	assert.Empty(t, uow.reservations)
}
