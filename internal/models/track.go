package models

// Requester identifies the user who asked for a track
type Requester struct {
	// ID is the Discord user ID of the requester
	ID string

	// DisplayName is the name shown in embeds and stats
	DisplayName string
}

// Track represents a single resolvable piece of audio
type Track struct {
	// Identifier is the backend-assigned track identifier
	Identifier string

	// Title is the track title
	Title string

	// Author is the artist or uploader
	Author string

	// URI is the canonical source URL of the track
	URI string

	// SourceName names the platform the track was resolved from
	SourceName string

	// DurationMs is the track length in milliseconds
	DurationMs int64

	// ArtworkURL is the thumbnail URL, may be empty until resolved
	ArtworkURL string

	// Encoded is the opaque backend payload used to start playback
	Encoded string

	// Requester is the user who requested the track
	Requester Requester
}

// DisplayAuthor returns the author or a placeholder when unknown
func (t *Track) DisplayAuthor() string {
	if t.Author == "" {
		return "Unknown Artist"
	}
	return t.Author
}

// DisplayTitle returns the title or a placeholder when unknown
func (t *Track) DisplayTitle() string {
	if t.Title == "" {
		return "Unknown Track"
	}
	return t.Title
}
