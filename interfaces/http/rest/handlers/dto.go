package handlers

import (
	"time"

	"cortex-backend/application/queries"
	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
	"cortex-backend/pkg/ids"
)

// EntityDTO is the wire representation of an entity. All identifiers
// are in opaque token form; raw storage ids never leave the service.
type EntityDTO struct {
	ID         string                 `json:"id"`
	Kind       string                 `json:"kind"`
	Attributes map[string]interface{} `json:"attributes"`
	OwnerID    string                 `json:"owner_id,omitempty"`
	CreatedBy  string                 `json:"created_by,omitempty"`
	UpdatedBy  string                 `json:"updated_by,omitempty"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
	DeletedAt  string                 `json:"deleted_at,omitempty"`
	Version    int                    `json:"version"`
}

// SynapseDTO is the wire representation of a synapse
type SynapseDTO struct {
	ID        string                 `json:"id"`
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Role      string                 `json:"role"`
	Direction string                 `json:"direction"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
	CreatedAt string                 `json:"created_at"`
	DeletedAt string                 `json:"deleted_at,omitempty"`
}

// NeighborhoodDTO is the wire representation of a one-hop neighborhood
type NeighborhoodDTO struct {
	Entity          EntityDTO                      `json:"entity"`
	Relatives       []EntityDTO                    `json:"relatives"`
	Synapses        []SynapseDTO                   `json:"synapses"`
	RelativesByRole map[string]map[string][]string `json:"relatives_by_role"`
	RelativeIDs     []string                       `json:"relative_ids"`
}

// ListEntitiesDTO carries one page of entities
type ListEntitiesDTO struct {
	Entities   []EntityDTO `json:"entities"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func entityToDTO(e *entities.Entity) EntityDTO {
	dto := EntityDTO{
		ID:         ids.Encode(e.ID().String()),
		Kind:       string(e.Kind()),
		Attributes: tokenizeAttributes(e.Attributes()),
		CreatedAt:  e.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  e.UpdatedAt().Format(time.RFC3339Nano),
		Version:    e.Version(),
	}
	if owner := e.OwnerID(); owner != nil {
		dto.OwnerID = ids.Encode(owner.String())
	}
	if createdBy := e.CreatedBy(); createdBy != nil {
		dto.CreatedBy = ids.Encode(createdBy.String())
	}
	if updatedBy := e.UpdatedBy(); updatedBy != nil {
		dto.UpdatedBy = ids.Encode(updatedBy.String())
	}
	if deletedAt := e.DeletedAt(); deletedAt != nil {
		dto.DeletedAt = deletedAt.Format(time.RFC3339Nano)
	}
	return dto
}

func synapseToDTO(s *entities.Synapse) SynapseDTO {
	dto := SynapseDTO{
		ID:        ids.Encode(s.ID().String()),
		From:      ids.Encode(s.From().String()),
		To:        ids.Encode(s.To().String()),
		Role:      s.Role(),
		Direction: string(s.Direction()),
		Order:     s.Order(),
		Weight:    s.Weight(),
		Props:     s.Props(),
		CreatedAt: s.CreatedAt().Format(time.RFC3339Nano),
	}
	if deletedAt := s.DeletedAt(); deletedAt != nil {
		dto.DeletedAt = deletedAt.Format(time.RFC3339Nano)
	}
	return dto
}

func neighborhoodToDTO(result *queries.NeighborhoodResult) NeighborhoodDTO {
	dto := NeighborhoodDTO{
		Entity:          entityToDTO(result.Entity),
		Relatives:       make([]EntityDTO, 0, len(result.Relatives)),
		Synapses:        make([]SynapseDTO, 0, len(result.Synapses)),
		RelativesByRole: make(map[string]map[string][]string, len(result.RelativesByRole)),
		RelativeIDs:     encodeIDs(result.RelativeIDs),
	}
	for _, relative := range result.Relatives {
		dto.Relatives = append(dto.Relatives, entityToDTO(relative))
	}
	for _, synapse := range result.Synapses {
		dto.Synapses = append(dto.Synapses, synapseToDTO(synapse))
	}
	for role, byDirection := range result.RelativesByRole {
		group := make(map[string][]string, len(byDirection))
		for direction, relativeIDs := range byDirection {
			group[string(direction)] = encodeIDs(relativeIDs)
		}
		dto.RelativesByRole[role] = group
	}
	return dto
}

func encodeIDs(rawIDs []valueobjects.EntityID) []string {
	tokens := make([]string, 0, len(rawIDs))
	for _, id := range rawIDs {
		tokens = append(tokens, ids.Encode(id.String()))
	}
	return tokens
}

// tokenizeAttributes rewrites id-shaped attribute values into token
// form so references stay consistent with the rest of the payload.
func tokenizeAttributes(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		out[key] = tokenizeValue(value)
	}
	return out
}

func tokenizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if valueobjects.IsRawID(v) {
			return ids.Encode(v)
		}
		return v
	case map[string]interface{}:
		return tokenizeAttributes(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = tokenizeValue(item)
		}
		return out
	default:
		return value
	}
}

// detokenizeAttributes is the inverse boundary transform: token-shaped
// strings inside inbound attributes become raw ids before the write,
// so reference scanning sees storage-format ids.
func detokenizeAttributes(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		out[key] = detokenizeValue(value)
	}
	return out
}

func detokenizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if ids.IsValidToken(v) {
			if raw, err := ids.Decode(v); err == nil {
				return raw
			}
		}
		return v
	case map[string]interface{}:
		return detokenizeAttributes(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = detokenizeValue(item)
		}
		return out
	default:
		return value
	}
}
