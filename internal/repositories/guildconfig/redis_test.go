package guildconfig

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/velrin/cadence/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAndGet() {
	cfg := &models.GuildConfig{
		GuildID:            "guild-1",
		AlwaysOn:           true,
		DJRequestMode:      true,
		AllowedDJRoleIDs:   []string{"role-1", "role-2"},
		NowPlayingAnnounce: true,
		DuplicateWarning:   true,
		DefaultVolume:      80,
	}

	err := s.repo.Save(context.Background(), &SaveInput{Config: cfg})
	s.Require().NoError(err)

	out, err := s.repo.Get(context.Background(), &GetInput{GuildID: "guild-1"})
	s.Require().NoError(err)
	s.Equal(cfg, out.Config)
}

func (s *RedisRepositoryTestSuite) TestGetMissingGuildReturnsNotFound() {
	_, err := s.repo.Get(context.Background(), &GetInput{GuildID: "nope"})
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RedisRepositoryTestSuite) TestSetAlwaysOnCreatesConfig() {
	err := s.repo.SetAlwaysOn(context.Background(), &SetAlwaysOnInput{
		GuildID:  "guild-2",
		AlwaysOn: true,
	})
	s.Require().NoError(err)

	out, err := s.repo.Get(context.Background(), &GetInput{GuildID: "guild-2"})
	s.Require().NoError(err)
	s.True(out.Config.AlwaysOn)
}

func (s *RedisRepositoryTestSuite) TestSetAlwaysOnPreservesOtherFields() {
	err := s.repo.Save(context.Background(), &SaveInput{Config: &models.GuildConfig{
		GuildID:       "guild-3",
		DJRequestMode: true,
	}})
	s.Require().NoError(err)

	err = s.repo.SetAlwaysOn(context.Background(), &SetAlwaysOnInput{
		GuildID:  "guild-3",
		AlwaysOn: true,
	})
	s.Require().NoError(err)

	out, err := s.repo.Get(context.Background(), &GetInput{GuildID: "guild-3"})
	s.Require().NoError(err)
	s.True(out.Config.AlwaysOn)
	s.True(out.Config.DJRequestMode)
}

func (s *RedisRepositoryTestSuite) TestSetCentralDisplay() {
	err := s.repo.SetCentralDisplay(context.Background(), &SetCentralDisplayInput{
		GuildID:   "guild-4",
		ChannelID: "chan-1",
		MessageID: "msg-1",
	})
	s.Require().NoError(err)

	out, err := s.repo.Get(context.Background(), &GetInput{GuildID: "guild-4"})
	s.Require().NoError(err)
	s.True(out.Config.CentralDisplay.IsSet())
	s.Equal("chan-1", out.Config.CentralDisplay.ChannelID)
	s.Equal("msg-1", out.Config.CentralDisplay.MessageID)
}
