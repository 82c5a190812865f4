package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type ExportHandler struct {
	ExportLeads *usecase.ExportLeadsUseCase
	Logger      *logging.Logger
	Now         func() time.Time
}

func NewExportHandler(export *usecase.ExportLeadsUseCase, logger *logging.Logger) *ExportHandler {
	return &ExportHandler{ExportLeads: export, Logger: logger, Now: time.Now}
}

// Export (GET /leads/export.csv). The file is built in memory first so a
// store failure still yields a JSON error.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.ExportLeads.Execute(r.Context(), actor(r), &buf)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", h.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Lead-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
