package commands

import (
	"errors"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// EdgeRequest describes one synapse to create alongside an entity
// write. An empty From or To defaults to the entity being written, the
// common "this new node is connected by this edge" pattern.
type EdgeRequest struct {
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	Role      string                 `json:"role" validate:"required"`
	Direction string                 `json:"direction" validate:"required,oneof=out in undirected"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
}

// CreateEntityCommand represents the command to create a new entity
// together with its initial edges, all-or-nothing.
type CreateEntityCommand struct {
	EntityID   string                 `json:"entity_id" validate:"required"`
	Kind       string                 `json:"kind" validate:"required"`
	Attributes map[string]interface{} `json:"attributes"`
	Edges      []EdgeRequest          `json:"edges,omitempty"`
	ActorID    string                 `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd CreateEntityCommand) Validate() error {
	if !valueobjects.IsRawID(cmd.EntityID) {
		return errors.New("entity id is required")
	}
	if cmd.Kind == "" {
		return errors.New("kind is required")
	}
	if !entities.IsRegisteredKind(entities.Kind(cmd.Kind)) {
		return errors.New("unknown entity kind")
	}
	for _, edge := range cmd.Edges {
		if err := validateEdgeRequest(edge); err != nil {
			return err
		}
	}
	return nil
}

func validateEdgeRequest(edge EdgeRequest) error {
	if edge.Role == "" {
		return errors.New("edge role is required")
	}
	if !entities.IsValidDirection(entities.Direction(edge.Direction)) {
		return errors.New("edge direction must be out, in or undirected")
	}
	if edge.From != "" && !valueobjects.IsRawID(edge.From) {
		return errors.New("edge from endpoint is not a valid id")
	}
	if edge.To != "" && !valueobjects.IsRawID(edge.To) {
		return errors.New("edge to endpoint is not a valid id")
	}
	if edge.From == "" && edge.To == "" {
		return errors.New("edge must name at least one endpoint")
	}
	return nil
}
