package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"cortex-backend/application/ports"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

const batchGetLimit = 100

// EntityRepository implements ports.EntityRepository using DynamoDB
type EntityRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewEntityRepository creates a new EntityRepository
func NewEntityRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetByID retrieves an entity by its id
func (r *EntityRepository) GetByID(ctx context.Context, id valueobjects.EntityID, includeDeleted bool) (*entities.Entity, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entityPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
	}

	output, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get entity", err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError("entity")
	}

	var item entityItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal entity item").WithCause(err)
	}
	if item.isDeleted() && !includeDeleted {
		return nil, pkgerrors.NewNotFoundError("entity")
	}

	return item.toEntity()
}

// GetByIDs retrieves multiple entities in one batch. Missing ids are
// omitted; so are soft-deleted ones unless includeDeleted is set.
func (r *EntityRepository) GetByIDs(ctx context.Context, ids []valueobjects.EntityID, includeDeleted bool) ([]*entities.Entity, error) {
	result := make([]*entities.Entity, 0, len(ids))

	for start := 0; start < len(ids); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: entityPK(id)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			})
		}

		requested := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}
		for len(requested) > 0 {
			output, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: requested,
			})
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("batch get entities", err)
			}

			for _, raw := range output.Responses[r.tableName] {
				var item entityItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, pkgerrors.NewInternalError("failed to unmarshal entity item").WithCause(err)
				}
				if item.isDeleted() && !includeDeleted {
					continue
				}
				entity, err := item.toEntity()
				if err != nil {
					return nil, err
				}
				result = append(result, entity)
			}

			requested = output.UnprocessedKeys
		}
	}

	return result, nil
}

// ListByKind retrieves live entities of one kind via GSI1, newest
// first, with an opaque cursor for the next page.
func (r *EntityRepository) ListByKind(ctx context.Context, kind entities.Kind, page ports.Pagination) ([]*entities.Entity, string, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(kindPK(kind)))).
		WithFilter(expression.AttributeNotExists(expression.Name("DeletedAt"))).
		Build()
	if err != nil {
		return nil, "", pkgerrors.NewInternalError("failed to build list expression").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if page.Limit > 0 {
		input.Limit = aws.Int32(int32(page.Limit))
	}
	if page.Cursor != "" {
		startKey, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = startKey
	}

	output, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.NewDatabaseError("list entities by kind", err)
	}

	result := make([]*entities.Entity, 0, len(output.Items))
	for _, raw := range output.Items {
		var item entityItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, "", pkgerrors.NewInternalError("failed to unmarshal entity item").WithCause(err)
		}
		entity, err := item.toEntity()
		if err != nil {
			return nil, "", err
		}
		result = append(result, entity)
	}

	nextCursor := ""
	if len(output.LastEvaluatedKey) > 0 {
		nextCursor, err = encodeCursor(output.LastEvaluatedKey)
		if err != nil {
			return nil, "", err
		}
	}

	r.logger.Debug("listed entities by kind",
		zap.String("kind", string(kind)),
		zap.Int("count", len(result)),
		zap.Bool("hasMore", nextCursor != ""),
	)
	return result, nextCursor, nil
}

// cursorKey carries the string attributes of a GSI1 evaluated key.
// All key attributes in this table are strings, which keeps the
// cursor a flat JSON object.
type cursorKey map[string]string

func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	flat := make(cursorKey, len(key))
	for name, value := range key {
		s, ok := value.(*types.AttributeValueMemberS)
		if !ok {
			return "", pkgerrors.NewInternalError(fmt.Sprintf("cursor attribute %s is not a string", name))
		}
		flat[name] = s.Value
	}
	raw, err := json.Marshal(flat)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode cursor").WithCause(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, pkgerrors.NewValidationError("cursor is malformed")
	}
	var flat cursorKey
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, pkgerrors.NewValidationError("cursor is malformed")
	}
	key := make(map[string]types.AttributeValue, len(flat))
	for name, value := range flat {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key, nil
}
