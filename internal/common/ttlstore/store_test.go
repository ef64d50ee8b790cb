package ttlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/velrin/cadence/internal/common/clock"
)

type StoreTestSuite struct {
	suite.Suite
	clock *clock.Fixed
	store *Store[string]
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = &clock.Fixed{Time: time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)}
	s.store = New[string](s.clock)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestGetReturnsLiveEntry() {
	s.store.Put("k", "v", time.Minute)

	got, ok := s.store.Get("k")
	s.Require().True(ok)
	s.Equal("v", got)
}

func (s *StoreTestSuite) TestGetExpiresEntry() {
	s.store.Put("k", "v", time.Minute)
	s.clock.Advance(time.Minute + time.Second)

	_, ok := s.store.Get("k")
	s.False(ok)
	s.Equal(0, s.store.Len())
}

func (s *StoreTestSuite) TestTakeRemovesEntry() {
	s.store.Put("k", "v", time.Minute)

	got, ok := s.store.Take("k")
	s.Require().True(ok)
	s.Equal("v", got)

	_, ok = s.store.Take("k")
	s.False(ok)
}

func (s *StoreTestSuite) TestTakeExpiredReportsAbsent() {
	s.store.Put("k", "v", time.Second)
	s.clock.Advance(2 * time.Second)

	_, ok := s.store.Take("k")
	s.False(ok)
}

func (s *StoreTestSuite) TestPutReplacesPriorEntry() {
	s.store.Put("k", "old", time.Second)
	s.clock.Advance(30 * time.Second)
	s.store.Put("k", "new", time.Minute)

	got, ok := s.store.Get("k")
	s.Require().True(ok)
	s.Equal("new", got)
}

func (s *StoreTestSuite) TestLenSweepsExpired() {
	s.store.Put("a", "1", time.Second)
	s.store.Put("b", "2", time.Hour)
	s.clock.Advance(time.Minute)

	s.Equal(1, s.store.Len())
}
