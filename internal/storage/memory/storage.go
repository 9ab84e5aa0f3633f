package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants  map[model.ParticipantID]*model.Participant
	usernameIndex map[string]model.ParticipantID
	contacts      map[model.ContactPair]bool
	counters      map[model.RateKey]int
	conversations map[model.ContactPair][]*model.Message
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants:  make(map[model.ParticipantID]*model.Participant),
		usernameIndex: make(map[string]model.ParticipantID),
		contacts:      make(map[model.ContactPair]bool),
		counters:      make(map[model.RateKey]int),
		conversations: make(map[model.ContactPair][]*model.Message),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
	s.usernameIndex[p.Username] = p.ID
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return p, nil
}

func (s *Storage) GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return p, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Contact ledger operations

func (s *Storage) ContactExists(ctx context.Context, pair model.ContactPair) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contacts[pair], nil
}

func (s *Storage) CreateContact(ctx context.Context, pair model.ContactPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[pair] = true
	return nil
}

// Rate counter operations

func (s *Storage) DailyCount(ctx context.Context, key model.RateKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[key], nil
}

func (s *Storage) IncrementDailyCount(ctx context.Context, key model.RateKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

// Message store operations

func (s *Storage) AppendMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair := model.NewContactPair(msg.SenderID, msg.ReceiverID)
	s.conversations[pair] = append(s.conversations[pair], msg)
	return nil
}

func (s *Storage) ConversationMessages(ctx context.Context, a, b model.ParticipantID) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pair := model.NewContactPair(a, b)
	msgs := s.conversations[pair]
	result := make([]*model.Message, len(msgs))
	copy(result, msgs)
	return result, nil
}
