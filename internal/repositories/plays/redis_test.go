package plays

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/velrin/cadence/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
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

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) record(id string, startedAt time.Time) *models.PlayRecord {
	return &models.PlayRecord{
		ID:         id,
		GuildID:    "guild-1",
		UserID:     "user-1",
		TrackID:    "track-" + id,
		Title:      "Song " + id,
		Author:     "Artist",
		URI:        "https://example.com/" + id,
		Source:     "youtube",
		DurationMs: 180000,
		StartedAt:  startedAt,
		Status:     models.PlayStatusStarted,
	}
}

func (s *RedisRepositoryTestSuite) TestAppendAndGet() {
	rec := s.record("a", s.testNow)

	err := s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: rec})
	s.Require().NoError(err)

	out, err := s.repo.GetRecordsSince(context.Background(), &GetRecordsSinceInput{
		GuildID: "guild-1",
	})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 1)
	s.Equal(rec, out.Records[0])
}

func (s *RedisRepositoryTestSuite) TestGetRecordsSinceWindow() {
	old := s.record("old", s.testNow.Add(-48*time.Hour))
	recent := s.record("recent", s.testNow.Add(-time.Hour))

	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: old}))
	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: recent}))

	out, err := s.repo.GetRecordsSince(context.Background(), &GetRecordsSinceInput{
		GuildID: "guild-1",
		Since:   s.testNow.Add(-24 * time.Hour),
	})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 1)
	s.Equal("recent", out.Records[0].ID)
}

func (s *RedisRepositoryTestSuite) TestGetRecordsSinceOrdersByStart() {
	later := s.record("later", s.testNow)
	earlier := s.record("earlier", s.testNow.Add(-time.Hour))

	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: later}))
	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: earlier}))

	out, err := s.repo.GetRecordsSince(context.Background(), &GetRecordsSinceInput{
		GuildID: "guild-1",
	})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 2)
	s.Equal("earlier", out.Records[0].ID)
	s.Equal("later", out.Records[1].ID)
}

func (s *RedisRepositoryTestSuite) TestUpdateRecord() {
	rec := s.record("a", s.testNow)
	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: rec}))

	rec.Status = models.PlayStatusEnded
	rec.EndedAt = s.testNow.Add(3 * time.Minute)
	rec.PlayedMs = 180000

	err := s.repo.UpdateRecord(context.Background(), &UpdateRecordInput{Record: rec})
	s.Require().NoError(err)

	out, err := s.repo.GetRecordsSince(context.Background(), &GetRecordsSinceInput{
		GuildID: "guild-1",
	})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 1)
	s.Equal(models.PlayStatusEnded, out.Records[0].Status)
	s.Equal(int64(180000), out.Records[0].PlayedMs)
}

func (s *RedisRepositoryTestSuite) TestUpdateMissingRecordFails() {
	err := s.repo.UpdateRecord(context.Background(), &UpdateRecordInput{
		Record: s.record("ghost", s.testNow),
	})
	s.Require().ErrorIs(err, ErrRecordNotFound)
}

func (s *RedisRepositoryTestSuite) TestGuildsAreIsolated() {
	rec := s.record("a", s.testNow)
	s.Require().NoError(s.repo.AppendRecord(context.Background(), &AppendRecordInput{Record: rec}))

	out, err := s.repo.GetRecordsSince(context.Background(), &GetRecordsSinceInput{
		GuildID: "guild-2",
	})
	s.Require().NoError(err)
	s.Empty(out.Records)
}
