package handlers

import (
	"net/http"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/http/middleware"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type UserHandler struct {
	DeleteUser *usecase.DeleteUserUseCase
	Users      entity.UserRepositoryInterface
	Logger     *logging.Logger
}

func NewUserHandler(deleteUser *usecase.DeleteUserUseCase, users entity.UserRepositoryInterface, logger *logging.Logger) *UserHandler {
	return &UserHandler{DeleteUser: deleteUser, Users: users, Logger: logger}
}

type deleteUserRequest struct {
	UID string `json:"uid"`
}

// Delete (POST /users/delete). The caller's role is checked against the
// stored profile inside the use case, so this route only needs a token.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}

	out, err := h.DeleteUser.Execute(r.Context(), middleware.CallerUID(r.Context()), req.UID)
	if err != nil {
		writeError(w, h.Logger, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Agents (GET /agents) lists assignable agents for the admin pickers.
func (h *UserHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Users.ListAgents(r.Context())
	if err != nil {
		writeError(w, h.Logger, &usecase.TechnicalError{Code: usecase.CodeStoreUnavailable, Message: "Could not load agents.", Err: err}, nil)
		return
	}
	if agents == nil {
		agents = []*entity.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}
