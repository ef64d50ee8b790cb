package lavalink

import (
	"encoding/json"
	"fmt"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
)

// wireTrack is the node's track representation
type wireTrack struct {
	Encoded string `json:"encoded"`
	Info    struct {
		Identifier string `json:"identifier"`
		Title      string `json:"title"`
		Author     string `json:"author"`
		URI        string `json:"uri"`
		SourceName string `json:"sourceName"`
		Length     int64  `json:"length"`
		ArtworkURL string `json:"artworkUrl"`
	} `json:"info"`
}

func (t wireTrack) toModel() *models.Track {
	return &models.Track{
		Identifier: t.Info.Identifier,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		URI:        t.Info.URI,
		SourceName: t.Info.SourceName,
		DurationMs: t.Info.Length,
		ArtworkURL: t.Info.ArtworkURL,
		Encoded:    t.Encoded,
	}
}

// decodeLoadResult normalizes a /v4/loadtracks response. The data payload
// changes shape with the load type, so it is decoded in a second pass once
// the kind is known.
func decodeLoadResult(body []byte) (*audio.LoadResult, error) {
	var envelope struct {
		LoadType string          `json:"loadType"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("undecodable loadtracks response: %w", err)
	}

	result := &audio.LoadResult{}

	switch audio.ParseLoadKind(envelope.LoadType, 0) {
	case audio.LoadKindPlaylist:
		var data struct {
			Info struct {
				Name string `json:"name"`
			} `json:"info"`
			Tracks []wireTrack `json:"tracks"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("undecodable playlist data: %w", err)
		}
		result.Kind = audio.LoadKindPlaylist
		result.Playlist = &audio.PlaylistInfo{Name: data.Info.Name}
		for _, t := range data.Tracks {
			result.Tracks = append(result.Tracks, t.toModel())
		}

	case audio.LoadKindTrack:
		// a track result carries one object, a search result a list
		var single wireTrack
		if err := json.Unmarshal(envelope.Data, &single); err == nil && single.Info.Identifier != "" {
			result.Kind = audio.LoadKindTrack
			result.Tracks = []*models.Track{single.toModel()}
			break
		}
		var list []wireTrack
		if err := json.Unmarshal(envelope.Data, &list); err != nil {
			return nil, fmt.Errorf("undecodable track data: %w", err)
		}
		if len(list) == 0 {
			result.Kind = audio.LoadKindEmpty
			break
		}
		result.Kind = audio.LoadKindTrack
		for _, t := range list {
			result.Tracks = append(result.Tracks, t.toModel())
		}

	case audio.LoadKindError:
		var data struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(envelope.Data, &data)
		result.Kind = audio.LoadKindError
		result.ErrorMessage = data.Message
		if result.ErrorMessage == "" {
			result.ErrorMessage = "failed to load track"
		}

	default:
		result.Kind = audio.LoadKindEmpty
	}

	return result, nil
}
