package handlers

import (
	"net/http"

	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type BulkHandler struct {
	Bulk   *usecase.BulkOperationsUseCase
	Logger *logging.Logger
}

func NewBulkHandler(bulk *usecase.BulkOperationsUseCase, logger *logging.Logger) *BulkHandler {
	return &BulkHandler{Bulk: bulk, Logger: logger}
}

type bulkRequest struct {
	LeadIDs []string `json:"leadIds"`
	AgentID string   `json:"agentId"`
}

// Assign (POST /leads/bulk/assign)
func (h *BulkHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	result, err := h.Bulk.BulkAssign(r.Context(), actor(r), req.LeadIDs, req.AgentID)
	if err != nil {
		writeError(w, h.Logger, err, partialResult(err, result))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete (POST /leads/bulk/delete)
func (h *BulkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	result, err := h.Bulk.BulkDelete(r.Context(), actor(r), req.LeadIDs)
	if err != nil {
		writeError(w, h.Logger, err, partialResult(err, result))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// partialResult reports committed chunks only when a chunk failed midway.
func partialResult(err error, result usecase.BulkResult) any {
	if usecase.IsTechnicalError(err) && result.Committed > 0 {
		return result
	}
	return nil
}
