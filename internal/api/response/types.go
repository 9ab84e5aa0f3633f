package response

import (
	"time"

	"github.com/touchline/touchline-chat/internal/model"
)

// Participant represents a participant in API responses
type Participant struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ParticipantFromModel converts a model.Participant to a response Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:       int64(p.ID),
		Username: p.Username,
		Role:     string(p.Role),
	}
}

// Message represents a message in API responses
type Message struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// MessageFromModel converts a model.Message to a response Message
func MessageFromModel(m *model.Message) Message {
	return Message{
		SenderID:   int64(m.SenderID),
		ReceiverID: int64(m.ReceiverID),
		Content:    m.Content,
		Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
	}
}

// Conversation is the response for a conversation listing
type Conversation struct {
	Messages []Message `json:"messages"`
}

// ConversationFromModel converts a slice of messages
func ConversationFromModel(msgs []*model.Message) Conversation {
	messages := make([]Message, len(msgs))
	for i, m := range msgs {
		messages[i] = MessageFromModel(m)
	}
	return Conversation{Messages: messages}
}
