package storage

import (
	"context"

	"github.com/touchline/touchline-chat/internal/model"
)

// Storage defines the interface for data persistence.
//
// The contact ledger and rate counters are written only by the authorization
// gate; chat sessions reach them exclusively through it. IncrementDailyCount
// must be atomic per key, but the gate provides the check-then-increment
// critical section itself, so backends only need atomic single increments.
type Storage interface {
	// Participant operations
	SaveParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error)
	ListParticipants(ctx context.Context) ([]*model.Participant, error)

	// Contact ledger operations. Pairs are unordered: creating {A,B} when
	// {B,A} exists is a no-op, never a duplicate.
	ContactExists(ctx context.Context, pair model.ContactPair) (bool, error)
	CreateContact(ctx context.Context, pair model.ContactPair) error

	// Rate counter operations. The calendar day is part of the key, so
	// counters roll over without an explicit reset.
	DailyCount(ctx context.Context, key model.RateKey) (int, error)
	IncrementDailyCount(ctx context.Context, key model.RateKey) (int, error)

	// Message store operations. Append-only; ConversationMessages returns
	// both directions of the pair ordered by timestamp ascending.
	AppendMessage(ctx context.Context, msg *model.Message) error
	ConversationMessages(ctx context.Context, a, b model.ParticipantID) ([]*model.Message, error)
}
