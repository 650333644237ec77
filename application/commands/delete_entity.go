package commands

import (
	"errors"

	"cortex-backend/domain/core/valueobjects"
)

// DeleteEntityCommand soft-deletes an entity. Synapses touching the
// entity are soft-deleted with it so their uniqueness reservations are
// released.
type DeleteEntityCommand struct {
	EntityID string `json:"entity_id" validate:"required"`
	ActorID  string `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd DeleteEntityCommand) Validate() error {
	if !valueobjects.IsRawID(cmd.EntityID) {
		return errors.New("entity id is required")
	}
	return nil
}

// RestoreEntityCommand clears an entity's soft-delete mark
type RestoreEntityCommand struct {
	EntityID string `json:"entity_id" validate:"required"`
	ActorID  string `json:"actor_id,omitempty"`
}

// Validate validates the command
func (cmd RestoreEntityCommand) Validate() error {
	if !valueobjects.IsRawID(cmd.EntityID) {
		return errors.New("entity id is required")
	}
	return nil
}
