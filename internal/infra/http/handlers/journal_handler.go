package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type JournalHandler struct {
	Journal *usecase.JournalService
	Logger  *logging.Logger
}

func NewJournalHandler(journal *usecase.JournalService, logger *logging.Logger) *JournalHandler {
	return &JournalHandler{Journal: journal, Logger: logger}
}

// Timeline (GET /leads/{id}/journal) returns live entries, newest first.
func (h *JournalHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Journal.Timeline(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type noteRequest struct {
	Note string `json:"note"`
}

// AddNote (POST /leads/{id}/journal)
func (h *JournalHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	entry, err := h.Journal.AddNote(r.Context(), chi.URLParam(r, "id"), actor(r), req.Note)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// DeleteEntry (DELETE /leads/{id}/journal/{entryID})
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := h.Journal.DeleteEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"), actor(r))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
