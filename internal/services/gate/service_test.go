package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/touchline/touchline-chat/internal/dependencies/mocks"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage/memory"
	"github.com/touchline/touchline-chat/internal/testutil"
)

type GateSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context

	player1   *model.Participant
	player2   *model.Participant
	official1 *model.Participant
	official2 *model.Participant
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.player1 = s.addParticipant(1, "player1", model.RolePlayer)
	s.player2 = s.addParticipant(2, "player2", model.RolePlayer)
	s.official1 = s.addParticipant(3, "official1", model.RoleOfficial)
	s.official2 = s.addParticipant(4, "official2", model.RoleOfficial)
}

func (s *GateSuite) addParticipant(id model.ParticipantID, username string, role model.Role) *model.Participant {
	p := &model.Participant{
		ID:        id,
		Username:  username,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, p))
	return p
}

func (s *GateSuite) contactExists(a, b model.ParticipantID) bool {
	exists, err := s.storage.ContactExists(s.ctx, model.NewContactPair(a, b))
	s.Require().NoError(err)
	return exists
}

func (s *GateSuite) TestOfficialToOfficialDenied() {
	decision := s.service.Decide(s.ctx, s.official1, s.official2.ID)
	s.False(decision.Allowed)
	s.Equal(ReasonOfficialToOfficial, decision.Reason)

	// Denied before any bookkeeping: no contact, no counters
	s.False(s.contactExists(s.official1.ID, s.official2.ID))
	count, err := s.storage.DailyCount(s.ctx, model.TotalRateKey(s.official1.ID, "2024-01-01"))
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *GateSuite) TestUnknownReceiverDenied() {
	decision := s.service.Decide(s.ctx, s.player1, model.ParticipantID(999))
	s.False(decision.Allowed)
	s.Equal(ReasonUnknownParticipant, decision.Reason)
}

func (s *GateSuite) TestPlayerToOfficialCreatesContact() {
	s.False(s.contactExists(s.player1.ID, s.official1.ID))

	decision := s.service.Decide(s.ctx, s.player1, s.official1.ID)
	s.True(decision.Allowed)
	s.True(s.contactExists(s.player1.ID, s.official1.ID))
}

func (s *GateSuite) TestOfficialToPlayerCreatesContact() {
	decision := s.service.Decide(s.ctx, s.official1, s.player1.ID)
	s.True(decision.Allowed)
	s.True(s.contactExists(s.official1.ID, s.player1.ID))
}

func (s *GateSuite) TestPlayerToPlayerNoContact() {
	decision := s.service.Decide(s.ctx, s.player1, s.player2.ID)
	s.True(decision.Allowed)
	s.False(s.contactExists(s.player1.ID, s.player2.ID))
}

func (s *GateSuite) TestPerOfficialDailyLimit() {
	for i := 0; i < PerOfficialDailyLimit; i++ {
		decision := s.service.Decide(s.ctx, s.player1, s.official1.ID)
		s.Require().True(decision.Allowed, "send %d should be admitted", i+1)
	}

	decision := s.service.Decide(s.ctx, s.player1, s.official1.ID)
	s.False(decision.Allowed)
	s.Equal(ReasonPerOfficialLimit, decision.Reason)

	// The limit is per official: a different official still accepts
	decision = s.service.Decide(s.ctx, s.player1, s.official2.ID)
	s.True(decision.Allowed)
}

func (s *GateSuite) TestPerOfficialLimitDoesNotApplyToOfficialSender() {
	for i := 0; i < PerOfficialDailyLimit+3; i++ {
		decision := s.service.Decide(s.ctx, s.official1, s.player1.ID)
		s.Require().True(decision.Allowed)
	}
}

func (s *GateSuite) TestTotalDailyLimit() {
	day := s.clock.Now().Format(model.DayFormat)
	for i := 0; i < TotalDailyLimit; i++ {
		_, err := s.storage.IncrementDailyCount(s.ctx, model.TotalRateKey(s.player1.ID, day))
		s.Require().NoError(err)
	}

	decision := s.service.Decide(s.ctx, s.player1, s.player2.ID)
	s.False(decision.Allowed)
	s.Equal(ReasonTotalLimit, decision.Reason)
}

func (s *GateSuite) TestContactCreatedEvenWhenDenied() {
	day := s.clock.Now().Format(model.DayFormat)
	for i := 0; i < TotalDailyLimit; i++ {
		_, err := s.storage.IncrementDailyCount(s.ctx, model.TotalRateKey(s.player1.ID, day))
		s.Require().NoError(err)
	}

	decision := s.service.Decide(s.ctx, s.player1, s.official1.ID)
	s.False(decision.Allowed)
	s.Equal(ReasonTotalLimit, decision.Reason)

	// Contact bookkeeping happens before the limit check
	s.True(s.contactExists(s.player1.ID, s.official1.ID))
}

func (s *GateSuite) TestDeniedAttemptsDoNotConsumeQuota() {
	for i := 0; i < PerOfficialDailyLimit; i++ {
		s.Require().True(s.service.Decide(s.ctx, s.player1, s.official1.ID).Allowed)
	}
	for i := 0; i < 10; i++ {
		s.Require().False(s.service.Decide(s.ctx, s.player1, s.official1.ID).Allowed)
	}

	day := s.clock.Now().Format(model.DayFormat)
	count, err := s.storage.DailyCount(s.ctx, model.TotalRateKey(s.player1.ID, day))
	s.Require().NoError(err)
	s.Equal(PerOfficialDailyLimit, count)
}

func (s *GateSuite) TestDayRolloverResetsLimits() {
	for i := 0; i < PerOfficialDailyLimit; i++ {
		s.Require().True(s.service.Decide(s.ctx, s.player1, s.official1.ID).Allowed)
	}
	s.False(s.service.Decide(s.ctx, s.player1, s.official1.ID).Allowed)

	s.clock.Advance(24 * time.Hour)

	decision := s.service.Decide(s.ctx, s.player1, s.official1.ID)
	s.True(decision.Allowed)
}

func (s *GateSuite) TestConcurrentSendsDoNotOverAdmit() {
	const attempts = 50

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.service.Decide(s.ctx, s.player1, s.official1.ID).Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(PerOfficialDailyLimit), admitted.Load())
}

func (s *GateSuite) TestConcurrentSendsAcrossOfficials() {
	const perOfficial = 20

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for _, official := range []*model.Participant{s.official1, s.official2} {
		for i := 0; i < perOfficial; i++ {
			wg.Add(1)
			go func(receiver model.ParticipantID) {
				defer wg.Done()
				if s.service.Decide(s.ctx, s.player1, receiver).Allowed {
					admitted.Add(1)
				}
			}(official.ID)
		}
	}
	wg.Wait()

	s.Equal(int64(2*PerOfficialDailyLimit), admitted.Load())
}

func (s *GateSuite) TestStorageFailureFailsClosed() {
	failing := &failingStorage{Storage: s.storage}
	service := New(failing, s.clock, testutil.NopLogger())

	decision := service.Decide(s.ctx, s.player1, s.official1.ID)
	s.False(decision.Allowed)
	s.Equal(ReasonUnavailable, decision.Reason)
}

// failingStorage wraps a working store but fails counter reads
type failingStorage struct {
	*memory.Storage
}

func (f *failingStorage) DailyCount(ctx context.Context, key model.RateKey) (int, error) {
	return 0, context.DeadlineExceeded
}
