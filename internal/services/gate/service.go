package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/touchline/touchline-chat/internal/dependencies/clock"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage"
)

// Policy limits for player senders
const (
	// PerOfficialDailyLimit is the maximum messages a player may send to one
	// official per calendar day
	PerOfficialDailyLimit = 5
	// TotalDailyLimit is the maximum messages a player may send per calendar
	// day across all receivers
	TotalDailyLimit = 100
)

// Denial reasons. These are user-facing strings sent back on the originating
// connection; they are fixed and tested against.
const (
	ReasonOfficialToOfficial = "Officials cannot contact each other."
	ReasonPerOfficialLimit   = "You have reached your daily limit of 5 messages to this official."
	ReasonTotalLimit         = "You have reached your daily limit of 100 messages."
	ReasonUnknownParticipant = "Invalid sender or receiver."
	ReasonUnavailable        = "Messaging is temporarily unavailable."
)

// senderLockCount is the number of stripes for per-sender serialization
const senderLockCount = 64

// Service is the authorization gate: the sole entry point that may admit or
// deny a send attempt, and the only writer of contacts and rate counters.
//
// Decide runs the whole evaluate-and-count step for one sender under a
// striped mutex, so concurrent sends from the same sender cannot both
// observe a count just under the limit and both be admitted.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	senderLocks [senderLockCount]sync.Mutex
}

// New creates a new gate service
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "gate")),
	}
}

// Decide evaluates whether sender may message receiverID right now, in fixed
// rule order:
//
//  1. official -> official is always denied, before any state is touched
//  2. for cross-role pairs the contact is established if absent (even when
//     the same attempt is then denied for a limit), and a player sender is
//     checked against the per-official daily limit
//  3. a player sender is checked against the total daily limit
//  4. otherwise the attempt is admitted and both counters advance
//
// Counter increments happen inside the same critical section as the checks,
// so an Admit consumes quota immediately. Storage failures deny the attempt
// rather than admit it without a durable counter update.
func (s *Service) Decide(ctx context.Context, sender *model.Participant, receiverID model.ParticipantID) model.Decision {
	receiver, err := s.storage.GetParticipant(ctx, receiverID)
	if err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return model.Deny(ReasonUnknownParticipant)
		}
		return s.failClosed("resolve receiver", err)
	}

	// Rule 1: officials cannot contact each other
	if sender.Role == model.RoleOfficial && receiver.Role == model.RoleOfficial {
		return model.Deny(ReasonOfficialToOfficial)
	}

	lock := &s.senderLocks[uint64(sender.ID)%senderLockCount]
	lock.Lock()
	defer lock.Unlock()

	day := s.clock.Now().Format(model.DayFormat)
	crossRole := sender.Role != receiver.Role

	// Rule 2: cross-role pairs establish contact and, for player senders,
	// enforce the per-official limit
	if crossRole {
		pair := model.NewContactPair(sender.ID, receiver.ID)
		exists, err := s.storage.ContactExists(ctx, pair)
		if err != nil {
			return s.failClosed("contact lookup", err)
		}
		if !exists {
			// First cross-role exchange establishes the contact, even if
			// this same attempt is denied below for a limit
			if err := s.storage.CreateContact(ctx, pair); err != nil {
				return s.failClosed("contact create", err)
			}
		}

		if sender.Role == model.RolePlayer {
			count, err := s.storage.DailyCount(ctx, model.PairRateKey(sender.ID, receiver.ID, day))
			if err != nil {
				return s.failClosed("pair count", err)
			}
			if count >= PerOfficialDailyLimit {
				return model.Deny(ReasonPerOfficialLimit)
			}
		}
	}

	// Rule 3: total daily limit for player senders
	if sender.Role == model.RolePlayer {
		total, err := s.storage.DailyCount(ctx, model.TotalRateKey(sender.ID, day))
		if err != nil {
			return s.failClosed("total count", err)
		}
		if total >= TotalDailyLimit {
			return model.Deny(ReasonTotalLimit)
		}
	}

	// Admitted: consume quota while still holding the sender lock
	if sender.Role == model.RolePlayer {
		if crossRole {
			if _, err := s.storage.IncrementDailyCount(ctx, model.PairRateKey(sender.ID, receiver.ID, day)); err != nil {
				return s.failClosed("pair increment", err)
			}
		}
		if _, err := s.storage.IncrementDailyCount(ctx, model.TotalRateKey(sender.ID, day)); err != nil {
			return s.failClosed("total increment", err)
		}
	}

	return model.Admit()
}

// failClosed logs an unexpected storage failure and denies the attempt so a
// message is never admitted without its counter update
func (s *Service) failClosed(op string, err error) model.Decision {
	s.logger.Error("gate storage failure",
		slog.String("op", op),
		slog.String("error", err.Error()))
	return model.Deny(ReasonUnavailable)
}
