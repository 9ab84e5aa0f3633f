package history

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/touchline/touchline-chat/internal/dependencies/clock"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage"
)

// Service is the append-only message store. It assigns server-side
// timestamps at acceptance; clients never supply them.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	// mu protects the monotonic timestamp watermark and sequence counter
	mu      sync.Mutex
	lastTS  time.Time
	lastSeq int64
}

// New creates a new history service
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "history")),
	}
}

// Append persists an accepted message and returns it with its assigned
// timestamp. Timestamps never decrease; messages accepted in the same
// instant are ordered by sequence number.
func (s *Service) Append(ctx context.Context, senderID, receiverID model.ParticipantID, content string) (*model.Message, error) {
	if content == "" {
		return nil, model.ErrEmptyMessage
	}

	s.mu.Lock()
	ts := s.clock.Now()
	if ts.Before(s.lastTS) {
		ts = s.lastTS
	}
	s.lastTS = ts
	s.lastSeq++
	seq := s.lastSeq
	s.mu.Unlock()

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  ts,
		Seq:        seq,
	}

	if err := s.storage.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns all messages exchanged between the two participants,
// in both directions, ordered by timestamp ascending with sequence numbers
// breaking ties.
func (s *Service) Conversation(ctx context.Context, a, b model.ParticipantID) ([]*model.Message, error) {
	msgs, err := s.storage.ConversationMessages(ctx, a, b)
	if err != nil {
		return nil, err
	}

	// Appends assign timestamps under a lock but may reach storage out of
	// order, so restore timestamp order here
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}
