package commands

import (
	"errors"

	"cortex-backend/domain/core/valueobjects"
)

// SynapseUpdate describes a partial update to an existing synapse
type SynapseUpdate struct {
	SynapseID string                 `json:"synapse_id" validate:"required"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
}

// EdgeOps bundles the edge mutations applied with an entity update
type EdgeOps struct {
	Create []EdgeRequest   `json:"create,omitempty"`
	Update []SynapseUpdate `json:"update,omitempty"`
	Delete []string        `json:"delete,omitempty"`
}

// IsEmpty reports whether no edge mutation was requested
func (ops EdgeOps) IsEmpty() bool {
	return len(ops.Create) == 0 && len(ops.Update) == 0 && len(ops.Delete) == 0
}

// UpdateEntityCommand represents the command to update an entity's
// attributes and apply edge operations in one transaction.
type UpdateEntityCommand struct {
	EntityID   string                 `json:"entity_id" validate:"required"`
	Attributes map[string]interface{} `json:"attributes"`
	EdgeOps    EdgeOps                `json:"edge_ops"`
	ActorID    string                 `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd UpdateEntityCommand) Validate() error {
	if !valueobjects.IsRawID(cmd.EntityID) {
		return errors.New("entity id is required")
	}
	for _, edge := range cmd.EdgeOps.Create {
		if err := validateEdgeRequest(edge); err != nil {
			return err
		}
	}
	for _, upd := range cmd.EdgeOps.Update {
		if !valueobjects.IsRawID(upd.SynapseID) {
			return errors.New("synapse id is required for edge update")
		}
	}
	for _, id := range cmd.EdgeOps.Delete {
		if !valueobjects.IsRawID(id) {
			return errors.New("synapse id is required for edge delete")
		}
	}
	return nil
}
