package commands

import (
	"errors"

	"cortex-backend/domain/core/entities"
	"cortex-backend/domain/core/valueobjects"
)

// SynapseRequest describes one standalone synapse creation
type SynapseRequest struct {
	SynapseID string                 `json:"synapse_id" validate:"required"`
	From      string                 `json:"from" validate:"required"`
	To        string                 `json:"to" validate:"required"`
	Role      string                 `json:"role" validate:"required"`
	Direction string                 `json:"direction" validate:"required,oneof=out in undirected"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
}

func (req SynapseRequest) validate() error {
	if !valueobjects.IsRawID(req.SynapseID) {
		return errors.New("synapse id is required")
	}
	if !valueobjects.IsRawID(req.From) {
		return errors.New("synapse from endpoint is required")
	}
	if !valueobjects.IsRawID(req.To) {
		return errors.New("synapse to endpoint is required")
	}
	if req.Role == "" {
		return errors.New("synapse role is required")
	}
	if !entities.IsValidDirection(entities.Direction(req.Direction)) {
		return errors.New("synapse direction must be out, in or undirected")
	}
	return nil
}

// CreateSynapseCommand creates a single synapse between two existing
// entities.
type CreateSynapseCommand struct {
	SynapseRequest
	ActorID string `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd CreateSynapseCommand) Validate() error {
	return cmd.SynapseRequest.validate()
}

// CreateSynapsesBatchCommand creates several synapses in one
// transaction, all-or-nothing across the batch.
type CreateSynapsesBatchCommand struct {
	Requests []SynapseRequest `json:"requests" validate:"required,min=1"`
	ActorID  string           `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd CreateSynapsesBatchCommand) Validate() error {
	if len(cmd.Requests) == 0 {
		return errors.New("batch requires at least one synapse request")
	}
	for _, req := range cmd.Requests {
		if err := req.validate(); err != nil {
			return err
		}
	}
	return nil
}
