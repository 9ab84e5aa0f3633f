package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/touchline/touchline-chat/internal/api/apierr"
	"github.com/touchline/touchline-chat/internal/api/middleware"
	"github.com/touchline/touchline-chat/internal/api/response"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/services/directory"
)

// UserHandler handles participant listing endpoints
type UserHandler struct {
	directory *directory.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(directoryService *directory.Service) *UserHandler {
	return &UserHandler{
		directory: directoryService,
	}
}

// List handles GET /api/v1/users
// Returns all participants except the caller
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetParticipant(r.Context())

	participants, err := h.directory.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	result := make([]response.Participant, 0, len(participants))
	for _, p := range participants {
		if p.ID == caller.ID {
			continue
		}
		result = append(result, response.ParticipantFromModel(p))
	}

	response.JSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid participant id"))
		return
	}

	participant, err := h.directory.Resolve(r.Context(), model.ParticipantID(id))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(participant))
}
