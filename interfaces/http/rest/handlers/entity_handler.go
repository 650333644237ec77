package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cortex-backend/application/commands"
	"cortex-backend/application/commands/bus"
	"cortex-backend/application/queries"
	querybus "cortex-backend/application/queries/bus"
	"cortex-backend/pkg/auth"
	"cortex-backend/pkg/common"
	"cortex-backend/pkg/ids"
	"cortex-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// EntityHandler handles entity-related HTTP requests
type EntityHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *EntityHandler {
	return &EntityHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// EdgeRequestDTO describes one edge to create alongside an entity
// write. Endpoints are tokens; an empty endpoint defaults to the
// entity being written.
type EdgeRequestDTO struct {
	From      string                 `json:"from,omitempty"`
	To        string                 `json:"to,omitempty"`
	Role      string                 `json:"role" validate:"required,max=64"`
	Direction string                 `json:"direction" validate:"required,oneof=out in undirected"`
	Order     *int                   `json:"order,omitempty"`
	Weight    *float64               `json:"weight,omitempty"`
	Props     map[string]interface{} `json:"props,omitempty"`
}

// CreateEntityRequest represents the request body for creating an entity
type CreateEntityRequest struct {
	Kind       string                 `json:"kind" validate:"required,max=64"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Edges      []EdgeRequestDTO       `json:"edges,omitempty" validate:"omitempty,max=50,dive"`
}

// UpdateEntityRequest represents the request body for updating an entity
type UpdateEntityRequest struct {
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	EdgeOps    struct {
		Create []EdgeRequestDTO   `json:"create,omitempty" validate:"omitempty,max=50,dive"`
		Update []SynapseUpdateDTO `json:"update,omitempty" validate:"omitempty,max=50,dive"`
		Delete []string           `json:"delete,omitempty" validate:"omitempty,max=50"`
	} `json:"edge_ops"`
}

// SynapseUpdateDTO describes a partial update to an existing synapse
type SynapseUpdateDTO struct {
	ID     string                 `json:"id" validate:"required"`
	Order  *int                   `json:"order,omitempty"`
	Weight *float64               `json:"weight,omitempty"`
	Props  map[string]interface{} `json:"props,omitempty"`
}

// CreateEntity handles POST /entities
func (h *EntityHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
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

	edges := make([]commands.EdgeRequest, 0, len(req.Edges))
	for _, edge := range req.Edges {
		decoded, err := decodeEdgeRequest(edge)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		edges = append(edges, decoded)
	}

	entityID := uuid.New().String()

	cmd := commands.CreateEntityCommand{
		EntityID:   entityID,
		Kind:       req.Kind,
		Attributes: detokenizeAttributes(req.Attributes),
		Edges:      edges,
		ActorID:    actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to create entity",
			zap.String("kind", req.Kind),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id": ids.Encode(entityID),
	})
}

// GetEntity handles GET /entities/{token}
func (h *EntityHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.decodeTokenParam(w, r)
	if !ok {
		return
	}

	query := queries.GetEntityQuery{
		EntityID:       entityID,
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to get entity",
			zap.String("entityID", entityID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	neighborhood, ok := result.(*queries.NeighborhoodResult)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected query result")
		return
	}

	common.RespondJSON(w, http.StatusOK, neighborhoodToDTO(neighborhood))
}

// UpdateEntity handles PUT /entities/{token}
func (h *EntityHandler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.decodeTokenParam(w, r)
	if !ok {
		return
	}

	var req UpdateEntityRequest
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

	var edgeOps commands.EdgeOps
	for _, edge := range req.EdgeOps.Create {
		decoded, err := decodeEdgeRequest(edge)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		edgeOps.Create = append(edgeOps.Create, decoded)
	}
	for _, upd := range req.EdgeOps.Update {
		synapseID, err := ids.Decode(upd.ID)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		edgeOps.Update = append(edgeOps.Update, commands.SynapseUpdate{
			SynapseID: synapseID,
			Order:     upd.Order,
			Weight:    upd.Weight,
			Props:     detokenizeAttributes(upd.Props),
		})
	}
	for _, token := range req.EdgeOps.Delete {
		synapseID, err := ids.Decode(token)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		edgeOps.Delete = append(edgeOps.Delete, synapseID)
	}

	cmd := commands.UpdateEntityCommand{
		EntityID:   entityID,
		Attributes: detokenizeAttributes(req.Attributes),
		EdgeOps:    edgeOps,
		ActorID:    actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to update entity",
			zap.String("entityID", entityID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id": ids.Encode(entityID),
	})
}

// DeleteEntity handles DELETE /entities/{token}
func (h *EntityHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.decodeTokenParam(w, r)
	if !ok {
		return
	}

	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := commands.DeleteEntityCommand{
		EntityID: entityID,
		ActorID:  actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to delete entity",
			zap.String("entityID", entityID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreEntity handles POST /entities/{token}/restore
func (h *EntityHandler) RestoreEntity(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.decodeTokenParam(w, r)
	if !ok {
		return
	}

	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := commands.RestoreEntityCommand{
		EntityID: entityID,
		ActorID:  actorID(principal),
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("failed to restore entity",
			zap.String("entityID", entityID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id": ids.Encode(entityID),
	})
}

// ListEntities handles GET /entities
func (h *EntityHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "kind query parameter is required")
		return
	}

	page := common.ExtractPageParams(r)

	query := queries.ListEntitiesQuery{
		Kind:   kind,
		Limit:  page.Limit,
		Cursor: page.Cursor,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list entities",
			zap.String("kind", kind),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	listed, ok := result.(*queries.ListEntitiesResult)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected query result")
		return
	}

	dto := ListEntitiesDTO{
		Entities:   make([]EntityDTO, 0, len(listed.Entities)),
		NextCursor: listed.NextCursor,
	}
	for _, entity := range listed.Entities {
		dto.Entities = append(dto.Entities, entityToDTO(entity))
	}

	common.RespondJSON(w, http.StatusOK, dto)
}

// decodeTokenParam extracts and decodes the {token} URL parameter
func (h *EntityHandler) decodeTokenParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := chi.URLParam(r, "token")
	if token == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "entity token is required")
		return "", false
	}
	entityID, err := ids.Decode(token)
	if err != nil {
		common.RespondAppError(w, err)
		return "", false
	}
	return entityID, true
}

// decodeEdgeRequest converts a wire edge description to command form,
// decoding endpoint tokens. Empty endpoints pass through untouched.
func decodeEdgeRequest(edge EdgeRequestDTO) (commands.EdgeRequest, error) {
	out := commands.EdgeRequest{
		Role:      edge.Role,
		Direction: edge.Direction,
		Order:     edge.Order,
		Weight:    edge.Weight,
		Props:     detokenizeAttributes(edge.Props),
	}
	if edge.From != "" {
		from, err := ids.Decode(edge.From)
		if err != nil {
			return commands.EdgeRequest{}, err
		}
		out.From = from
	}
	if edge.To != "" {
		to, err := ids.Decode(edge.To)
		if err != nil {
			return commands.EdgeRequest{}, err
		}
		out.To = to
	}
	return out, nil
}

// actorID resolves the acting principal's storage id. Principals carry
// their entity token as the JWT subject; one that does not decode acts
// anonymously and no authorship is recorded.
func actorID(principal *auth.Principal) string {
	raw, err := ids.Decode(principal.ID)
	if err != nil {
		return ""
	}
	return raw
}
