package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/http/middleware"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   errorBody `json:"error"`
	Partial any       `json:"partial,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(code string) int {
	switch code {
	case usecase.CodeValidation, usecase.CodeNoRowsSelected, usecase.CodeNoDataRows, usecase.CodeInvalidArgument:
		return http.StatusBadRequest
	case usecase.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case usecase.CodeSessionNotFound, usecase.CodeAgentNotFound, usecase.CodeLeadNotFound, usecase.CodeEntryNotFound:
		return http.StatusNotFound
	case usecase.CodeUnauthenticated:
		return http.StatusUnauthorized
	case usecase.CodePermissionDenied:
		return http.StatusForbidden
	case usecase.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps the use case error taxonomy onto HTTP. partial, when not
// nil, is echoed so callers can see how far a bulk operation got.
func writeError(w http.ResponseWriter, logger *logging.Logger, err error, partial any) {
	var (
		de *usecase.DomainError
		te *usecase.TechnicalError
	)
	switch {
	case errors.As(err, &de):
		writeJSON(w, statusFor(de.Code), errorResponse{Error: errorBody{Code: de.Code, Message: de.Message}, Partial: partial})
	case errors.As(err, &te):
		logger.Error("request failed", "code", te.Code, "error", err)
		writeJSON(w, statusFor(te.Code), errorResponse{Error: errorBody{Code: te.Code, Message: te.Message}, Partial: partial})
	default:
		logger.Error("unexpected error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{Code: usecase.CodeInternal, Message: "Internal error."}})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return usecase.NewDomainError(usecase.CodeInvalidArgument, fmt.Sprintf("Invalid JSON: %v", err))
	}
	return nil
}

// actor is only called behind RequireActor.
func actor(r *http.Request) entity.Actor {
	a, _ := middleware.ActorFromContext(r.Context())
	return a
}
