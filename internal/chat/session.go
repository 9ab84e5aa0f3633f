package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/services/directory"
	"github.com/touchline/touchline-chat/internal/services/gate"
	"github.com/touchline/touchline-chat/internal/services/history"
)

// MessageType is the outbound type tag for accepted chat messages
const MessageType = "chat_message"

// Envelope is the inbound frame a client sends over the chat socket
type Envelope struct {
	Message    string `json:"message"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
}

// OutboundMessage is the frame broadcast to every subscriber of a room when
// a message is accepted
type OutboundMessage struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Timestamp  string `json:"timestamp"`
}

// OutboundError is the frame sent back to the originating connection only
type OutboundError struct {
	Error string `json:"error"`
}

const malformedEnvelopeReason = "Invalid message payload."

// SessionHandler upgrades chat connections and runs one session per
// connection: join the room, process inbound envelopes through the
// authorization gate, persist accepted messages, and broadcast them.
type SessionHandler struct {
	hubs      *HubManager
	directory *directory.Service
	gate      *gate.Service
	history   *history.Service
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewSessionHandler creates a new chat session handler
func NewSessionHandler(
	hubs *HubManager,
	directoryService *directory.Service,
	gateService *gate.Service,
	historyService *history.Service,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		hubs:      hubs,
		directory: directoryService,
		gate:      gateService,
		history:   historyService,
		logger:    logger.With(slog.String("component", "chat-session")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP handles GET /ws/chat/{room}
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	if room == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade writes its own error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	hub := h.hubs.GetOrCreateHub(room)
	client := NewClient(conn)
	hub.Join(client)
	go client.writePump()

	logger := h.logger.With(slog.String("room", room))
	logger.Info("chat session joined")

	// The read loop is this session's receive order: envelopes from one
	// connection are processed strictly in the order they arrive
	h.readLoop(r.Context(), conn, client, hub, logger)

	hub.Leave(client)
	logger.Info("chat session closed")
}

func (h *SessionHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *Client, hub *Hub, logger *slog.Logger) {
	conn.SetReadLimit(maxEnvelopeSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("chat connection error", slog.String("error", err.Error()))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendError(client, malformedEnvelopeReason)
			continue
		}
		if env.Message == "" || env.SenderID == 0 || env.ReceiverID == 0 {
			h.sendError(client, malformedEnvelopeReason)
			continue
		}

		h.handleEnvelope(ctx, client, hub, env, logger)
	}
}

// handleEnvelope runs one send attempt through the gate and, if admitted,
// persists the message before broadcasting it to the room
func (h *SessionHandler) handleEnvelope(ctx context.Context, client *Client, hub *Hub, env Envelope, logger *slog.Logger) {
	sender, err := h.directory.Resolve(ctx, model.ParticipantID(env.SenderID))
	if err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			h.sendError(client, gate.ReasonUnknownParticipant)
		} else {
			logger.Error("sender resolution failed", slog.String("error", err.Error()))
			h.sendError(client, gate.ReasonUnavailable)
		}
		return
	}

	decision := h.gate.Decide(ctx, sender, model.ParticipantID(env.ReceiverID))
	if !decision.Allowed {
		h.sendError(client, decision.Reason)
		return
	}

	msg, err := h.history.Append(ctx, sender.ID, model.ParticipantID(env.ReceiverID), env.Message)
	if err != nil {
		logger.Error("message persistence failed", slog.String("error", err.Error()))
		h.sendError(client, gate.ReasonUnavailable)
		return
	}

	payload, err := json.Marshal(OutboundMessage{
		Type:       MessageType,
		Message:    msg.Content,
		SenderID:   int64(msg.SenderID),
		ReceiverID: int64(msg.ReceiverID),
		Timestamp:  msg.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.Error("outbound encode failed", slog.String("error", err.Error()))
		return
	}

	hub.Broadcast(payload)
}

// sendError reports a failure to the originating connection only; nothing is
// broadcast and other sessions are unaffected
func (h *SessionHandler) sendError(client *Client, reason string) {
	payload, err := json.Marshal(OutboundError{Error: reason})
	if err != nil {
		return
	}
	if !client.Send(payload) {
		h.logger.Warn("error envelope dropped - client buffer full")
	}
}
