package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type ImportHandler struct {
	Import   *usecase.ImportLeadsUseCase
	Logger   *logging.Logger
	MaxBytes int64
}

func NewImportHandler(uc *usecase.ImportLeadsUseCase, logger *logging.Logger) *ImportHandler {
	return &ImportHandler{Import: uc, Logger: logger, MaxBytes: uc.MaxBytes}
}

// Preview (POST /imports) accepts a multipart "file" field or a raw text body.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	raw, err := h.readUpload(r)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	preview, err := h.Import.Preview(r.Context(), actor(r), raw)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, preview)
}

type selectionRequest struct {
	RowIDs []string `json:"rowIds"`
}

// Select (PUT /imports/{id}/selection)
func (h *ImportHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	preview, err := h.Import.Select(r.Context(), actor(r), chi.URLParam(r, "id"), req.RowIDs)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Confirm (POST /imports/{id}/confirm)
func (h *ImportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.Import.Confirm(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Cancel (DELETE /imports/{id})
func (h *ImportHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Import.Cancel(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload reads at most MaxBytes+1 so the use case can reject oversize
// files with its own error.
func (h *ImportHandler) readUpload(r *http.Request) (string, error) {
	limit := h.MaxBytes + 1
	var src io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		r.Body = http.MaxBytesReader(nil, r.Body, limit+(1<<16))
		file, _, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return "", usecase.NewDomainError(usecase.CodeFileTooLarge, "The file is too large to import.")
		case err != nil:
			return "", usecase.NewDomainError(usecase.CodeInvalidArgument, "Expected a CSV file in the \"file\" field.")
		}
		defer file.Close()
		src = file
	}

	b, err := io.ReadAll(io.LimitReader(src, limit))
	if err != nil {
		return "", usecase.NewDomainError(usecase.CodeInvalidArgument, "Could not read the uploaded file.")
	}
	return string(b), nil
}
