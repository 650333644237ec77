package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// SynapseRepository implements ports.SynapseRepository using DynamoDB.
// Synapses live in the same table as every other entity; the endpoint
// indexes GSI2 (from) and GSI3 (to) serve the touching-synapse query.
type SynapseRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSynapseRepository creates a new SynapseRepository
func NewSynapseRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *SynapseRepository {
	return &SynapseRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetByID retrieves a synapse by its id
func (r *SynapseRepository) GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Synapse, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entityPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get synapse", err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError("synapse")
	}

	var item entityItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal synapse item").WithCause(err)
	}
	if item.Kind != string(entities.KindSynapse) {
		return nil, pkgerrors.NewNotFoundError("synapse")
	}
	if item.isDeleted() && !includeDeleted {
		return nil, pkgerrors.NewNotFoundError("synapse")
	}

	return item.toSynapse()
}

// GetByEndpoint retrieves all synapses touching id, querying the from
// index and the to index and merging the results.
func (r *SynapseRepository) GetByEndpoint(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) ([]*entities.Synapse, error) {
	outgoing, err := r.queryEndpoint(ctx, gsi2Name, "GSI2PK", endpointFromPK(id), includeDeleted)
	if err != nil {
		return nil, err
	}
	incoming, err := r.queryEndpoint(ctx, gsi3Name, "GSI3PK", endpointToPK(id), includeDeleted)
	if err != nil {
		return nil, err
	}

	// self-loops are rejected at creation, so the two sets are disjoint
	merged := make([]*entities.Synapse, 0, len(outgoing)+len(incoming))
	merged = append(merged, outgoing...)
	merged = append(merged, incoming...)

	r.logger.Debug("loaded touching synapses",
		zap.String("entityId", id.String()),
		zap.Int("count", len(merged)),
	)
	return merged, nil
}

// ExistsByKey reports whether a live synapse holds the (from, to, role)
// reservation.
func (r *SynapseRepository) ExistsByKey(ctx context.Context, from, to valueobjects.EntityID, role string) (bool, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: synapseKeyPK(from, to, role)},
			"SK": &types.AttributeValueMemberS{Value: skUnique},
		},
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("check synapse key", err)
	}
	return output.Item != nil, nil
}

func (r *SynapseRepository) queryEndpoint(ctx context.Context, indexName, keyName, keyValue string, includeDeleted bool) ([]*entities.Synapse, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(keyName).Equal(expression.Value(keyValue)))
	if !includeDeleted {
		builder = builder.WithFilter(expression.AttributeNotExists(expression.Name("DeletedAt")))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build endpoint expression").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var synapses []*entities.Synapse
	for {
		output, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query synapses by endpoint", err)
		}
		for _, raw := range output.Items {
			var item entityItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewInternalError("failed to unmarshal synapse item").WithCause(err)
			}
			synapse, err := item.toSynapse()
			if err != nil {
				return nil, err
			}
			synapses = append(synapses, synapse)
		}
		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	return synapses, nil
}
