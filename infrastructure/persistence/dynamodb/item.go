package dynamodb

import (
	"fmt"
	"time"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	pkgerrors "cortex-backend/pkg/errors"
)

// Single-table layout. Every entity, synapses included, is one item:
//
//	PK = ENTITY#<id>          SK = METADATA
//	GSI1PK = KIND#<kind>      GSI1SK = CREATED#<ts>#<id>   kind listings
//
// Synapse items additionally carry endpoint keys so both directions
// can be queried:
//
//	GSI2PK = FROM#<from>      GSI2SK = SYN#<id>
//	GSI3PK = TO#<to>          GSI3SK = SYN#<id>
//
// Live-synapse uniqueness on (from, to, role) is enforced by a
// companion reservation item written in the same transaction:
//
//	PK = SYNKEY#<from>#<to>#<role>   SK = UNIQUE
const (
	skMetadata = "METADATA"
	skUnique   = "UNIQUE"
	gsi1Name   = "GSI1"
	gsi2Name   = "GSI2"
	gsi3Name   = "GSI3"
	entityType = "ENTITY"
	timeLayout = time.RFC3339Nano
)

func entityPK(id valueobjects.EntityID) string {
	return "ENTITY#" + id.String()
}

func kindPK(kind entities.Kind) string {
	return "KIND#" + string(kind)
}

func endpointFromPK(id valueobjects.EntityID) string {
	return "FROM#" + id.String()
}

func endpointToPK(id valueobjects.EntityID) string {
	return "TO#" + id.String()
}

func synapseSK(id valueobjects.EntityID) string {
	return "SYN#" + id.String()
}

func synapseKeyPK(from, to valueobjects.EntityID, role string) string {
	return fmt.Sprintf("SYNKEY#%s#%s#%s", from.String(), to.String(), role)
}

// entityItem is the DynamoDB item structure shared by all kinds
type entityItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	GSI1PK     string                 `dynamodbav:"GSI1PK"`
	GSI1SK     string                 `dynamodbav:"GSI1SK"`
	GSI2PK     string                 `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string                 `dynamodbav:"GSI2SK,omitempty"`
	GSI3PK     string                 `dynamodbav:"GSI3PK,omitempty"`
	GSI3SK     string                 `dynamodbav:"GSI3SK,omitempty"`
	EntityType string                 `dynamodbav:"EntityType"`
	EntityID   string                 `dynamodbav:"EntityID"`
	Kind       string                 `dynamodbav:"Kind"`
	Attributes map[string]interface{} `dynamodbav:"Attributes"`
	OwnerID    string                 `dynamodbav:"OwnerID,omitempty"`
	CreatedBy  string                 `dynamodbav:"CreatedBy,omitempty"`
	UpdatedBy  string                 `dynamodbav:"UpdatedBy,omitempty"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
	UpdatedAt  string                 `dynamodbav:"UpdatedAt"`
	DeletedAt  string                 `dynamodbav:"DeletedAt,omitempty"`
	Version    int                    `dynamodbav:"Version"`
}

// synapseKeyItem reserves a live (from, to, role) tuple
type synapseKeyItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	SynapseID string `dynamodbav:"SynapseID"`
}

func itemFromEntity(e *entities.Entity) entityItem {
	item := entityItem{
		PK:         entityPK(e.ID()),
		SK:         skMetadata,
		GSI1PK:     kindPK(e.Kind()),
		GSI1SK:     fmt.Sprintf("CREATED#%s#%s", e.CreatedAt().UTC().Format(timeLayout), e.ID().String()),
		EntityType: entityType,
		EntityID:   e.ID().String(),
		Kind:       string(e.Kind()),
		Attributes: e.Attributes(),
		CreatedAt:  e.CreatedAt().UTC().Format(timeLayout),
		UpdatedAt:  e.UpdatedAt().UTC().Format(timeLayout),
		Version:    e.Version(),
	}
	if owner := e.OwnerID(); owner != nil {
		item.OwnerID = owner.String()
	}
	if createdBy := e.CreatedBy(); createdBy != nil {
		item.CreatedBy = createdBy.String()
	}
	if updatedBy := e.UpdatedBy(); updatedBy != nil {
		item.UpdatedBy = updatedBy.String()
	}
	if deletedAt := e.DeletedAt(); deletedAt != nil {
		item.DeletedAt = deletedAt.UTC().Format(timeLayout)
	}
	return item
}

func itemFromSynapse(s *entities.Synapse) (entityItem, error) {
	envelope, err := s.Envelope()
	if err != nil {
		return entityItem{}, err
	}
	item := itemFromEntity(envelope)
	item.GSI2PK = endpointFromPK(s.From())
	item.GSI2SK = synapseSK(s.ID())
	item.GSI3PK = endpointToPK(s.To())
	item.GSI3SK = synapseSK(s.ID())
	return item, nil
}

func (item entityItem) toEntity() (*entities.Entity, error) {
	id, err := valueobjects.NewEntityIDFromString(item.EntityID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored entity has an invalid id").WithCause(err)
	}

	createdAt, err := parseStoredTime(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseStoredTime(item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	var deletedAt *time.Time
	if item.DeletedAt != "" {
		t, err := parseStoredTime(item.DeletedAt)
		if err != nil {
			return nil, err
		}
		deletedAt = t
	}

	var ownerID, createdBy, updatedBy *valueobjects.EntityID
	if item.OwnerID != "" {
		if ref, err := valueobjects.NewEntityIDFromString(item.OwnerID); err == nil {
			ownerID = &ref
		}
	}
	if item.CreatedBy != "" {
		if ref, err := valueobjects.NewEntityIDFromString(item.CreatedBy); err == nil {
			createdBy = &ref
		}
	}
	if item.UpdatedBy != "" {
		if ref, err := valueobjects.NewEntityIDFromString(item.UpdatedBy); err == nil {
			updatedBy = &ref
		}
	}

	entity, err := entities.ReconstructEntity(
		id, entities.Kind(item.Kind), item.Attributes,
		ownerID, createdBy, updatedBy,
		*createdAt, *updatedAt, deletedAt,
		item.Version,
	)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored entity failed reconstruction").WithCause(err)
	}
	return entity, nil
}

func (item entityItem) toSynapse() (*entities.Synapse, error) {
	envelope, err := item.toEntity()
	if err != nil {
		return nil, err
	}
	synapse, err := entities.SynapseFromEntity(envelope)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored synapse failed reconstruction").WithCause(err)
	}
	return synapse, nil
}

func (item entityItem) isDeleted() bool {
	return item.DeletedAt != ""
}

func parseStoredTime(value string) (*time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored timestamp is malformed").WithCause(err)
	}
	return &t, nil
}
