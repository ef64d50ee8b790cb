package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/repositories/guildconfig"
	"github.com/velrin/cadence/internal/services/player"
)

// DisplayConfig holds configuration for the central display sync
type DisplayConfig struct {
	// Session is the shared Discord session
	Session *discordgo.Session

	// ConfigRepo locates each guild's pinned status message
	ConfigRepo guildconfig.Repository

	// Logger is required
	Logger *logrus.Logger
}

// Display keeps a guild's pinned status message in step with playback.
// Guilds that never ran setup simply have no display to update.
type Display struct {
	session    *discordgo.Session
	configRepo guildconfig.Repository
	logger     *logrus.Logger
}

// NewDisplay creates a new central display sync
func NewDisplay(cfg *DisplayConfig) (*Display, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}
	if cfg.ConfigRepo == nil {
		return nil, errors.New("config repository cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Display{
		session:    cfg.Session,
		configRepo: cfg.ConfigRepo,
		logger:     cfg.Logger,
	}, nil
}

// Refresh rewrites the guild's status message. A nil display renders the
// idle state.
func (d *Display) Refresh(ctx context.Context, guildID string, display *player.DisplayInfo) {
	out, err := d.configRepo.Get(ctx, &guildconfig.GetInput{GuildID: guildID})
	if err != nil {
		if !errors.Is(err, guildconfig.ErrNotFound) {
			d.logger.WithError(err).WithField("guild_id", guildID).Warn("Guild config read failed")
		}
		return
	}

	target := out.Config.CentralDisplay
	if !target.IsSet() {
		return
	}

	embed := renderIdleEmbed()
	if display != nil {
		embed = renderNowPlayingEmbed(display)
	}

	if _, err := d.session.ChannelMessageEditEmbed(target.ChannelID, target.MessageID, embed); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"guild_id":   guildID,
			"channel_id": target.ChannelID,
		}).Debug("Failed to update status message")
	}
}
