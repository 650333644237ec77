package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/events"
	pkgerrors "cortex-backend/pkg/errors"
)

// DynamoDB caps TransactWriteItems at 100 items; synapse creations
// cost two items each (the synapse plus its key reservation), so the
// effective budget is kept well below the hard limit.
const maxTransactItems = 100

// UnitOfWork implements ports.UnitOfWork on DynamoDB TransactWriteItems.
// Writes are staged as transact items and applied in one atomic call
// on Commit; a failed commit leaves the table untouched.
type UnitOfWork struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	transactItems []types.TransactWriteItem
	// reservations maps the transact item index of each synapse key
	// put to its uniqueness tuple, so a cancelled condition check can
	// be reported as the duplicate it is.
	reservations  map[int]*entities.Synapse
	pendingEvents []events.DomainEvent
	inTransaction bool
	committed     bool
}

// NewUnitOfWork creates a new unit of work instance
func NewUnitOfWork(client *dynamodb.Client, tableName string, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{
		client:        client,
		tableName:     tableName,
		logger:        logger,
		transactItems: make([]types.TransactWriteItem, 0),
		reservations:  make(map[int]*entities.Synapse),
		pendingEvents: make([]events.DomainEvent, 0),
	}
}

// Begin starts a new transaction
func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.inTransaction {
		return fmt.Errorf("transaction already in progress")
	}
	uow.inTransaction = true
	uow.committed = false
	uow.clear()
	return nil
}

// RegisterEntitySave stages an entity create or update
func (uow *UnitOfWork) RegisterEntitySave(entity *entities.Entity) error {
	if !uow.inTransaction {
		return fmt.Errorf("no transaction in progress")
	}

	av, err := attributevalue.MarshalMap(itemFromEntity(entity))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal entity").WithCause(err)
	}
	uow.transactItems = append(uow.transactItems, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(uow.tableName),
			Item:      av,
		},
	})
	return nil
}

// RegisterSynapseCreate stages a synapse insert plus its uniqueness
// reservation. The reservation put carries a not-exists condition, so
// a concurrent identical insert cancels the whole transaction.
func (uow *UnitOfWork) RegisterSynapseCreate(synapse *entities.Synapse) error {
	if !uow.inTransaction {
		return fmt.Errorf("no transaction in progress")
	}

	if err := uow.putSynapseItem(synapse); err != nil {
		return err
	}

	keyAV, err := attributevalue.MarshalMap(synapseKeyItem{
		PK:        synapseKeyPK(synapse.From(), synapse.To(), synapse.Role()),
		SK:        skUnique,
		SynapseID: synapse.ID().String(),
	})
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal synapse key").WithCause(err)
	}

	uow.transactItems = append(uow.transactItems, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(uow.tableName),
			Item:                keyAV,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	})
	uow.reservations[len(uow.transactItems)-1] = synapse
	return nil
}

// RegisterSynapseSave stages an update to an existing synapse
func (uow *UnitOfWork) RegisterSynapseSave(synapse *entities.Synapse) error {
	if !uow.inTransaction {
		return fmt.Errorf("no transaction in progress")
	}
	return uow.putSynapseItem(synapse)
}

// RegisterSynapseDelete stages a synapse soft-delete and releases its
// uniqueness reservation so an identical edge can be created later.
func (uow *UnitOfWork) RegisterSynapseDelete(synapse *entities.Synapse) error {
	if !uow.inTransaction {
		return fmt.Errorf("no transaction in progress")
	}

	if err := uow.putSynapseItem(synapse); err != nil {
		return err
	}
	uow.transactItems = append(uow.transactItems, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(uow.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: synapseKeyPK(synapse.From(), synapse.To(), synapse.Role())},
				"SK": &types.AttributeValueMemberS{Value: skUnique},
			},
		},
	})
	return nil
}

// RegisterEvent stages a domain event for post-commit publication
func (uow *UnitOfWork) RegisterEvent(event events.DomainEvent) {
	uow.pendingEvents = append(uow.pendingEvents, event)
}

// Commit executes all staged operations atomically
func (uow *UnitOfWork) Commit(ctx context.Context) error {
	if !uow.inTransaction {
		return fmt.Errorf("no transaction in progress")
	}
	defer func() { uow.inTransaction = false }()

	if len(uow.transactItems) > maxTransactItems {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("transaction exceeds limit of %d items: %d staged", maxTransactItems, len(uow.transactItems)))
	}
	if len(uow.transactItems) == 0 {
		uow.committed = true
		return nil
	}

	_, err := uow.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: uow.transactItems,
	})
	if err != nil {
		return uow.mapCommitError(err)
	}

	uow.committed = true
	uow.logger.Debug("transaction committed", zap.Int("items", len(uow.transactItems)))
	return nil
}

// Rollback discards all staged writes. Nothing has touched the table
// before Commit, so discarding the staging buffers is sufficient.
func (uow *UnitOfWork) Rollback() error {
	uow.inTransaction = false
	uow.clear()
	return nil
}

// CommittedEvents returns the staged events after a successful Commit
func (uow *UnitOfWork) CommittedEvents() []events.DomainEvent {
	if !uow.committed {
		return nil
	}
	return uow.pendingEvents
}

func (uow *UnitOfWork) putSynapseItem(synapse *entities.Synapse) error {
	item, err := itemFromSynapse(synapse)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal synapse").WithCause(err)
	}
	uow.transactItems = append(uow.transactItems, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(uow.tableName),
			Item:      av,
		},
	})
	return nil
}

// mapCommitError distinguishes a duplicate (from, to, role) reservation
// from other transaction failures. Cancellation reasons line up with
// the transact item order.
func (uow *UnitOfWork) mapCommitError(err error) error {
	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		for i, reason := range cancelled.CancellationReasons {
			if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
				continue
			}
			if synapse, ok := uow.reservations[i]; ok {
				return pkgerrors.NewDuplicateRelationshipError(
					synapse.From().String(),
					synapse.To().String(),
					synapse.Role(),
				)
			}
		}
	}
	return pkgerrors.NewTransactionAbortedError(err)
}

func (uow *UnitOfWork) clear() {
	uow.transactItems = uow.transactItems[:0]
	uow.reservations = make(map[int]*entities.Synapse)
	uow.pendingEvents = uow.pendingEvents[:0]
}

// UnitOfWorkFactory creates a fresh unit of work per write operation
type UnitOfWorkFactory struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUnitOfWorkFactory creates the factory
func NewUnitOfWorkFactory(client *dynamodb.Client, tableName string, logger *zap.Logger) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{client: client, tableName: tableName, logger: logger}
}

// New returns a fresh unit of work
func (f *UnitOfWorkFactory) New() ports.UnitOfWork {
	return NewUnitOfWork(f.client, f.tableName, f.logger)
}
