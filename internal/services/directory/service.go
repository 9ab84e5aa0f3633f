package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/touchline/touchline-chat/internal/dependencies/clock"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage"
)

// Service resolves and lists participants. Identity storage proper is a thin
// boundary here: participants are created once (registration or seeding) and
// their roles never change.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	// mu serializes id allocation across concurrent registrations
	mu     sync.Mutex
	nextID model.ParticipantID
}

// New creates a new directory service
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "directory")),
	}
}

// Resolve returns the participant with the given id
func (s *Service) Resolve(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return s.storage.GetParticipant(ctx, id)
}

// List returns all participants ordered by id
func (s *Service) List(ctx context.Context) ([]*model.Participant, error) {
	return s.storage.ListParticipants(ctx)
}

// Register creates a participant with the given username and role
func (s *Service) Register(ctx context.Context, username string, role model.Role) (*model.Participant, error) {
	if !role.Valid() {
		return nil, model.ErrInvalidRole
	}

	_, err := s.storage.GetParticipantByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrParticipantNotFound) {
		return nil, err
	}

	id, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	p := &model.Participant{
		ID:        id,
		Username:  username,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveParticipant(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("participant registered",
		slog.Int64("id", int64(p.ID)),
		slog.String("role", string(p.Role)))
	return p, nil
}

// allocateID hands out the next unused participant id
func (s *Service) allocateID(ctx context.Context) (model.ParticipantID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextID == 0 {
		existing, err := s.storage.ListParticipants(ctx)
		if err != nil {
			return 0, err
		}
		s.nextID = 1
		for _, p := range existing {
			if p.ID >= s.nextID {
				s.nextID = p.ID + 1
			}
		}
	}

	id := s.nextID
	s.nextID++
	return id, nil
}
