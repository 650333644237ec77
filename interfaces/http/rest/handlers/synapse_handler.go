package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/application/commands/bus"
	"cortex-backend/pkg/auth"
	"cortex-backend/pkg/common"
	"cortex-backend/pkg/ids"
	"cortex-backend/pkg/utils"
)

// SynapseHandler handles synapse-related HTTP requests
type SynapseHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewSynapseHandler creates a new synapse handler
func NewSynapseHandler(commandBus *bus.CommandBus, logger *zap.Logger) *SynapseHandler {
	return &SynapseHandler{
		commandBus: commandBus,
		logger:     logger,
	}
}

// CreateSynapseRequest represents the request body for creating a synapse
type CreateSynapseRequest struct {
	From      string                 `json:"from" validate:"required"`
	To        string                 `json:"to" validate:"required"`
	Role      string                 `json:"role" validate:"required,max=64"`
	Direction string                 `json:"direction" validate:"required,oneof=out in undirected"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
}

// CreateSynapsesBatchRequest represents the request body for creating
// several synapses in one transaction.
type CreateSynapsesBatchRequest struct {
	Synapses []CreateSynapseRequest `json:"synapses" validate:"required,min=1,max=50,dive"`
}

// CreateSynapse handles POST /synapses
func (h *SynapseHandler) CreateSynapse(w http.ResponseWriter, r *http.Request) {
	var req CreateSynapseRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	request, err := decodeSynapseRequest(req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	cmd := commands.CreateSynapseCommand{
		SynapseRequest: request,
		ActorID:        actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to create synapse",
			zap.String("role", req.Role),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id": ids.Encode(request.SynapseID),
	})
}

// CreateSynapsesBatch handles POST /synapses/batch
func (h *SynapseHandler) CreateSynapsesBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateSynapsesBatchRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	requests := make([]commands.SynapseRequest, 0, len(req.Synapses))
	for _, item := range req.Synapses {
		request, err := decodeSynapseRequest(item)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		requests = append(requests, request)
	}

	cmd := commands.CreateSynapsesBatchCommand{
		Requests: requests,
		ActorID:  actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to create synapse batch",
			zap.Int("count", len(requests)),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	tokens := make([]string, 0, len(requests))
	for _, request := range requests {
		tokens = append(tokens, ids.Encode(request.SynapseID))
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"ids": tokens,
	})
}

func decodeSynapseRequest(req CreateSynapseRequest) (commands.SynapseRequest, error) {
	from, err := ids.Decode(req.From)
	if err != nil {
		return commands.SynapseRequest{}, err
	}
	to, err := ids.Decode(req.To)
	if err != nil {
		return commands.SynapseRequest{}, err
	}
	return commands.SynapseRequest{
		SynapseID: uuid.New().String(),
		From:      from,
		To:        to,
		Role:      req.Role,
		Direction: req.Direction,
		Order:     req.Order,
		Weight:    req.Weight,
		Props:     detokenizeAttributes(req.Props),
	}, nil
}
