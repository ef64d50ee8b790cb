package player

import (
	"strings"

	"github.com/velrin/cadence/internal/models"
)

// DuplicateLocation says where the matching track was found
type DuplicateLocation string

const (
	// DuplicateLocationCurrent means the candidate matches the playing track
	DuplicateLocationCurrent DuplicateLocation = "current"

	// DuplicateLocationQueue means the candidate matches a queued track
	DuplicateLocationQueue DuplicateLocation = "queue"
)

// DuplicateMatch describes an existing track the candidate collides with
type DuplicateMatch struct {
	// Location is where the match sits
	Location DuplicateLocation

	// Track is the existing track that matched
	Track *models.Track

	// Position is the 1-based queue position for queue matches
	Position int
}

// tracksMatch applies the match key precedence: URI equality, then backend
// identifier equality, then case-insensitive exact title equality
func tracksMatch(a, b *models.Track) bool {
	if a.URI != "" && a.URI == b.URI {
		return true
	}
	if a.Identifier != "" && a.Identifier == b.Identifier {
		return true
	}
	return a.Title != "" && strings.EqualFold(a.Title, b.Title)
}

// CheckDuplicate compares a candidate against the current track and the
// queue, current first, queue in order. Returns nil when nothing matches.
// Pure function; never mutates either side.
func CheckDuplicate(current *models.Track, queue []*models.Track, candidate *models.Track) *DuplicateMatch {
	if candidate == nil {
		return nil
	}

	if current != nil && tracksMatch(current, candidate) {
		return &DuplicateMatch{
			Location: DuplicateLocationCurrent,
			Track:    current,
		}
	}

	for i, queued := range queue {
		if queued == nil {
			continue
		}
		if tracksMatch(queued, candidate) {
			return &DuplicateMatch{
				Location: DuplicateLocationQueue,
				Track:    queued,
				Position: i + 1,
			}
		}
	}

	return nil
}
