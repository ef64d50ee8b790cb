package audio

import (
	"strings"

	"github.com/velrin/cadence/internal/models"
)

// LoadKind is the normalized outcome of a resolve call. Backends are known
// to emit several string spellings for the same semantic outcome (legacy
// and current naming); everything is folded into these four tags before any
// branching logic runs.
type LoadKind string

const (
	// LoadKindTrack means a single playable track was found
	LoadKindTrack LoadKind = "track"

	// LoadKindPlaylist means a full playlist was found
	LoadKindPlaylist LoadKind = "playlist"

	// LoadKindEmpty means the query matched nothing
	LoadKindEmpty LoadKind = "empty"

	// LoadKindError means the backend failed to resolve the query
	LoadKindError LoadKind = "error"
)

// ParseLoadKind folds every recognized backend spelling into one of the
// four canonical tags. An unrecognized spelling that still carried tracks
// degrades to a track result; with no tracks it is treated as empty.
func ParseLoadKind(raw string, trackCount int) LoadKind {
	switch strings.ToLower(raw) {
	case "track", "track_loaded", "search", "search_result":
		return LoadKindTrack
	case "playlist", "playlist_loaded":
		return LoadKindPlaylist
	case "empty", "no_matches":
		return LoadKindEmpty
	case "error", "load_failed":
		return LoadKindError
	default:
		if trackCount > 0 {
			return LoadKindTrack
		}
		return LoadKindEmpty
	}
}

// PlaylistInfo describes a resolved playlist
type PlaylistInfo struct {
	// Name is the playlist title
	Name string
}

// LoadResult is the normalized outcome of resolving a query
type LoadResult struct {
	// Kind is the canonical outcome tag
	Kind LoadKind

	// Tracks holds the resolved tracks; one entry for a track result, the
	// full list for a playlist
	Tracks []*models.Track

	// Playlist is set for playlist results
	Playlist *PlaylistInfo

	// ErrorMessage carries the backend failure reason for error results
	ErrorMessage string
}
