package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/touchline/touchline-chat/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RateCounterTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Participant tests

func (s *StorageSuite) TestSaveAndGetParticipant() {
	p := &model.Participant{
		ID:        1,
		Username:  "alice",
		Role:      model.RolePlayer,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	err := s.storage.SaveParticipant(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetParticipant(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(p.Username, retrieved.Username)
	s.Equal(p.Role, retrieved.Role)
	s.True(p.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	_, err := s.storage.GetParticipant(s.ctx, 42)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestGetParticipantByUsername() {
	p := &model.Participant{ID: 1, Username: "alice", Role: model.RoleOfficial}
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, p))

	retrieved, err := s.storage.GetParticipantByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ParticipantID(1), retrieved.ID)

	_, err = s.storage.GetParticipantByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestListParticipantsSortedByID() {
	for _, p := range []*model.Participant{
		{ID: 3, Username: "carol", Role: model.RoleOfficial},
		{ID: 1, Username: "alice", Role: model.RolePlayer},
		{ID: 2, Username: "bob", Role: model.RolePlayer},
	} {
		s.Require().NoError(s.storage.SaveParticipant(s.ctx, p))
	}

	participants, err := s.storage.ListParticipants(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(participants, 3)
	s.Equal(model.ParticipantID(1), participants[0].ID)
	s.Equal(model.ParticipantID(3), participants[2].ID)
}

// Contact tests

func (s *StorageSuite) TestContactSymmetricAndIdempotent() {
	pair := model.NewContactPair(5, 2)

	exists, err := s.storage.ContactExists(s.ctx, pair)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.CreateContact(s.ctx, pair))
	s.Require().NoError(s.storage.CreateContact(s.ctx, model.NewContactPair(2, 5)))

	exists, err = s.storage.ContactExists(s.ctx, model.NewContactPair(2, 5))
	s.Require().NoError(err)
	s.True(exists)
}

// Rate counter tests

func (s *StorageSuite) TestIncrementDailyCount() {
	key := model.PairRateKey(1, 3, "2024-01-01")

	count, err := s.storage.DailyCount(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(0, count)

	for i := 1; i <= 3; i++ {
		count, err = s.storage.IncrementDailyCount(s.ctx, key)
		s.Require().NoError(err)
		s.Equal(i, count)
	}
}

func (s *StorageSuite) TestCountersKeyedByDay() {
	_, err := s.storage.IncrementDailyCount(s.ctx, model.TotalRateKey(1, "2024-01-01"))
	s.Require().NoError(err)

	count, err := s.storage.DailyCount(s.ctx, model.TotalRateKey(1, "2024-01-02"))
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *StorageSuite) TestCounterExpiry() {
	key := model.TotalRateKey(1, "2024-01-01")
	_, err := s.storage.IncrementDailyCount(s.ctx, key)
	s.Require().NoError(err)

	s.mini.FastForward(2 * time.Hour)

	count, err := s.storage.DailyCount(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(0, count)
}

// Message tests

func (s *StorageSuite) TestAppendAndListMessages() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*model.Message{
		{SenderID: 1, ReceiverID: 2, Content: "hello", Timestamp: base, Seq: 1},
		{SenderID: 2, ReceiverID: 1, Content: "hi back", Timestamp: base.Add(time.Second), Seq: 2},
	}
	for _, m := range msgs {
		s.Require().NoError(s.storage.AppendMessage(s.ctx, m))
	}

	conv, err := s.storage.ConversationMessages(s.ctx, 2, 1)
	s.Require().NoError(err)
	s.Require().Len(conv, 2)
	s.Equal("hello", conv[0].Content)
	s.Equal(model.ParticipantID(2), conv[1].SenderID)
}

func (s *StorageSuite) TestConversationsIsolated() {
	m := &model.Message{SenderID: 1, ReceiverID: 2, Content: "hello", Timestamp: time.Now(), Seq: 1}
	s.Require().NoError(s.storage.AppendMessage(s.ctx, m))

	conv, err := s.storage.ConversationMessages(s.ctx, 1, 3)
	s.Require().NoError(err)
	s.Empty(conv)
}
