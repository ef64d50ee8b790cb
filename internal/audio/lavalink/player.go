package lavalink

import (
	"context"

	"github.com/velrin/cadence/internal/models"
)

// player is the per-guild transport handle
type player struct {
	client  *Client
	guildID string
}

// Play starts playback of the given track
func (p *player) Play(ctx context.Context, track *models.Track) error {
	return p.client.updatePlayer(ctx, p.guildID, map[string]any{
		"track": map[string]any{"encoded": track.Encoded},
	})
}

// Pause suspends or resumes playback
func (p *player) Pause(ctx context.Context, paused bool) error {
	return p.client.updatePlayer(ctx, p.guildID, map[string]any{
		"paused": paused,
	})
}

// Seek jumps to a position within the current track
func (p *player) Seek(ctx context.Context, positionMs int64) error {
	return p.client.updatePlayer(ctx, p.guildID, map[string]any{
		"position": positionMs,
	})
}

// Stop halts playback without disconnecting
func (p *player) Stop(ctx context.Context) error {
	return p.client.updatePlayer(ctx, p.guildID, map[string]any{
		"track": map[string]any{"encoded": nil},
	})
}

// SetVolume sets playback volume
func (p *player) SetVolume(ctx context.Context, volume int) error {
	return p.client.updatePlayer(ctx, p.guildID, map[string]any{
		"volume": volume,
	})
}

// Destroy removes the node player and leaves the voice channel
func (p *player) Destroy(ctx context.Context) error {
	if err := p.client.destroyPlayer(ctx, p.guildID); err != nil {
		return err
	}
	return p.client.cfg.ConnectVoice(p.guildID, "")
}
