package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/touchline/touchline-chat/internal/api/apierr"
	"github.com/touchline/touchline-chat/internal/api/middleware"
	"github.com/touchline/touchline-chat/internal/api/response"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/services/history"
)

// ConversationHandler handles conversation history endpoints
type ConversationHandler struct {
	history *history.Service
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(historyService *history.Service) *ConversationHandler {
	return &ConversationHandler{
		history: historyService,
	}
}

// Get handles GET /api/v1/conversations/{user_id}
// Returns the messages exchanged between the caller and the other
// participant, both directions, oldest first
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetParticipant(r.Context())

	otherID, err := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid participant id"))
		return
	}

	messages, err := h.history.Conversation(r.Context(), caller.ID, model.ParticipantID(otherID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ConversationFromModel(messages))
}
