package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/touchline/touchline-chat/internal/dependencies/mocks"
	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage/memory"
	"github.com/touchline/touchline-chat/internal/testutil"
)

type DirectorySuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *DirectorySuite) TestRegisterAndResolve() {
	p, err := s.service.Register(s.ctx, "alice", model.RolePlayer)
	s.Require().NoError(err)
	s.Equal("alice", p.Username)
	s.Equal(model.RolePlayer, p.Role)
	s.True(p.CreatedAt.Equal(s.clock.Now()))

	resolved, err := s.service.Resolve(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Username, resolved.Username)
}

func (s *DirectorySuite) TestRegisterAssignsSequentialIDs() {
	a, err := s.service.Register(s.ctx, "alice", model.RolePlayer)
	s.Require().NoError(err)
	b, err := s.service.Register(s.ctx, "bob", model.RoleOfficial)
	s.Require().NoError(err)
	s.Equal(a.ID+1, b.ID)
}

func (s *DirectorySuite) TestRegisterRejectsDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", model.RolePlayer)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", model.RoleOfficial)
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *DirectorySuite) TestRegisterRejectsInvalidRole() {
	_, err := s.service.Register(s.ctx, "alice", model.Role("REFEREE"))
	s.ErrorIs(err, model.ErrInvalidRole)
}

func (s *DirectorySuite) TestResolveUnknown() {
	_, err := s.service.Resolve(s.ctx, 99)
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *DirectorySuite) TestList() {
	_, err := s.service.Register(s.ctx, "alice", model.RolePlayer)
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, "bob", model.RoleOfficial)
	s.Require().NoError(err)

	participants, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(participants, 2)
}
