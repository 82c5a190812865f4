package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/http/middleware"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

const streamKeepAlive = 25 * time.Second

type LeadHandler struct {
	Queries   *usecase.LeadQueries
	Create    *usecase.CreateLeadUseCase
	Update    *usecase.UpdateLeadUseCase
	Assign    *usecase.AssignLeadUseCase
	Logger    *logging.Logger
	KeepAlive time.Duration
}

func NewLeadHandler(
	queries *usecase.LeadQueries,
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	assign *usecase.AssignLeadUseCase,
	logger *logging.Logger,
) *LeadHandler {
	return &LeadHandler{
		Queries:   queries,
		Create:    create,
		Update:    update,
		Assign:    assign,
		Logger:    logger,
		KeepAlive: streamKeepAlive,
	}
}

func views(leads []*entity.Lead) []usecase.LeadView {
	out := make([]usecase.LeadView, 0, len(leads))
	for _, l := range leads {
		out = append(out, usecase.NewLeadView(l))
	}
	return out
}

// List (GET /leads)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Queries.List(r.Context(), actor(r))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": views(leads)})
}

// Get (GET /leads/{id})
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Queries.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewLeadView(lead))
}

// CreateLead (POST /leads)
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	lead, err := h.Create.Execute(r.Context(), actor(r), input)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, usecase.NewLeadView(lead))
}

// AdminUpdate (PATCH /leads/{id})
func (h *LeadHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var input usecase.AdminUpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	lead, err := h.Update.AdminUpdate(r.Context(), actor(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewLeadView(lead))
}

// AgentUpdate (PATCH /leads/{id}/agent)
func (h *LeadHandler) AgentUpdate(w http.ResponseWriter, r *http.Request) {
	var input usecase.AgentUpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	lead, err := h.Update.AgentUpdate(r.Context(), actor(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewLeadView(lead))
}

type assignRequest struct {
	AgentID string `json:"agentId"`
}

// AssignLead (PUT /leads/{id}/assignment)
func (h *LeadHandler) AssignLead(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	lead, err := h.Assign.Execute(r.Context(), actor(r), chi.URLParam(r, "id"), req.AgentID)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewLeadView(lead))
}

type actionItemRequest struct {
	ActionItem string `json:"actionItem"`
}

// SaveActionItem (PUT /leads/{id}/action-item)
func (h *LeadHandler) SaveActionItem(w http.ResponseWriter, r *http.Request) {
	var req actionItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	lead, err := h.Update.SaveActionItem(r.Context(), actor(r), chi.URLParam(r, "id"), req.ActionItem)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, usecase.NewLeadView(lead))
}

// Delete (DELETE /leads/{id})
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Queries.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream (GET /leads/stream) sends a snapshot followed by live changes as
// server-sent events. The subscription opens before the snapshot is read so
// no change falls between the two.
func (h *LeadHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.Logger, usecase.NewDomainError(usecase.CodeInternal, "Streaming unsupported."), nil)
		return
	}

	ctx := r.Context()
	changes, err := h.Queries.Watch(ctx, actor(r))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	leads, err := h.Queries.List(ctx, actor(r))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	middleware.StreamOpened()
	defer middleware.StreamClosed()

	if err := writeEvent(w, "snapshot", map[string]any{"leads": views(leads)}); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = streamKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, ok := <-changes:
			if !ok {
				return
			}
			var lead *usecase.LeadView
			if change.Lead != nil {
				v := usecase.NewLeadView(change.Lead)
				lead = &v
			}
			payload := map[string]any{"type": change.Type, "leadId": change.LeadID}
			if lead != nil {
				payload["lead"] = lead
			}
			if err := writeEvent(w, "change", payload); err != nil {
				h.Logger.Debug("stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
