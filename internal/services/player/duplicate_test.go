package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velrin/cadence/internal/models"
)

func dupTrack(id, title, uri string) *models.Track {
	return &models.Track{Identifier: id, Title: title, URI: uri}
}

func TestCheckDuplicateMatchesByURI(t *testing.T) {
	current := dupTrack("id1", "Song A", "https://example.com/u1")
	candidate := dupTrack("other-id", "Other Title", "https://example.com/u1")

	match := CheckDuplicate(current, nil, candidate)
	require.NotNil(t, match)
	assert.Equal(t, DuplicateLocationCurrent, match.Location)
	assert.Same(t, current, match.Track)
}

func TestCheckDuplicateMatchesByIdentifier(t *testing.T) {
	queue := []*models.Track{dupTrack("id1", "Song A", "https://example.com/u1")}
	candidate := dupTrack("id1", "Other Title", "https://example.com/different")

	match := CheckDuplicate(nil, queue, candidate)
	require.NotNil(t, match)
	assert.Equal(t, DuplicateLocationQueue, match.Location)
	assert.Equal(t, 1, match.Position)
}

func TestCheckDuplicateMatchesByTitleCaseInsensitive(t *testing.T) {
	queue := []*models.Track{dupTrack("id1", "Song A", "https://example.com/u1")}
	candidate := dupTrack("id2", "SONG a", "https://example.com/u2")

	match := CheckDuplicate(nil, queue, candidate)
	require.NotNil(t, match)
	assert.Equal(t, DuplicateLocationQueue, match.Location)
}

func TestCheckDuplicateCurrentWinsOverQueue(t *testing.T) {
	current := dupTrack("id1", "Song A", "https://example.com/u1")
	queue := []*models.Track{dupTrack("id1", "Song A", "https://example.com/u1")}
	candidate := dupTrack("id1", "Song A", "https://example.com/u1")

	match := CheckDuplicate(current, queue, candidate)
	require.NotNil(t, match)
	assert.Equal(t, DuplicateLocationCurrent, match.Location)
}

func TestCheckDuplicateReportsFirstQueueMatch(t *testing.T) {
	queue := []*models.Track{
		dupTrack("id1", "Song A", "https://example.com/u1"),
		dupTrack("id2", "Song B", "https://example.com/u2"),
		dupTrack("id2", "Song B", "https://example.com/u2"),
	}
	candidate := dupTrack("id2", "Song B", "https://example.com/u2")

	match := CheckDuplicate(nil, queue, candidate)
	require.NotNil(t, match)
	assert.Equal(t, 2, match.Position)
}

func TestCheckDuplicateIsReflexive(t *testing.T) {
	track := dupTrack("id1", "Song A", "https://example.com/u1")

	match := CheckDuplicate(track, nil, track)
	require.NotNil(t, match)
	assert.Equal(t, DuplicateLocationCurrent, match.Location)
}

func TestCheckDuplicateNoMatch(t *testing.T) {
	current := dupTrack("id1", "Song A", "https://example.com/u1")
	queue := []*models.Track{dupTrack("id2", "Song B", "https://example.com/u2")}
	candidate := dupTrack("id3", "Song C", "https://example.com/u3")

	assert.Nil(t, CheckDuplicate(current, queue, candidate))
}

func TestCheckDuplicateSkipsNilQueueEntries(t *testing.T) {
	queue := []*models.Track{nil, dupTrack("id1", "Song A", "https://example.com/u1")}
	candidate := dupTrack("id1", "Song A", "https://example.com/u1")

	match := CheckDuplicate(nil, queue, candidate)
	require.NotNil(t, match)
	assert.Equal(t, 2, match.Position)
}

func TestCheckDuplicateDoesNotMutateQueue(t *testing.T) {
	queue := []*models.Track{
		dupTrack("id1", "Song A", "https://example.com/u1"),
		dupTrack("id2", "Song B", "https://example.com/u2"),
	}
	candidate := dupTrack("id1", "Song A", "https://example.com/u1")

	CheckDuplicate(nil, queue, candidate)

	assert.Len(t, queue, 2)
	assert.Equal(t, "id1", queue[0].Identifier)
	assert.Equal(t, "id2", queue[1].Identifier)
}

func TestCheckDuplicateEmptyFieldsDoNotMatch(t *testing.T) {
	queue := []*models.Track{dupTrack("", "", "")}
	candidate := dupTrack("", "", "")

	assert.Nil(t, CheckDuplicate(nil, queue, candidate))
}
