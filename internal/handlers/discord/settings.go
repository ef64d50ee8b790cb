package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/velrin/cadence/internal/repositories/guildconfig"
	"github.com/velrin/cadence/internal/services/player"
	"github.com/velrin/cadence/internal/services/stats"
)

func (b *Bot) handleAlwaysOn(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	cfg := b.guildSettings(ctx, i.GuildID)
	enabled := !cfg.AlwaysOn

	err := b.player.SetAlwaysOn(ctx, &player.SetAlwaysOnInput{
		GuildID:  i.GuildID,
		AlwaysOn: enabled,
	})
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Could not update 24/7 mode: %v", err))
	}

	if enabled {
		return RespondWithMessage(s, i, "24/7 mode is **on**. I'll stay in voice even with an empty queue.")
	}
	return RespondWithMessage(s, i, "24/7 mode is **off**.")
}

func (b *Bot) handleAutoplay(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	snap, err := b.player.QueueSnapshot(ctx, &player.QueueSnapshotInput{GuildID: i.GuildID})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}

	enabled := !snap.Autoplay
	if err := b.player.SetAutoplay(ctx, &player.SetAutoplayInput{
		GuildID: i.GuildID,
		Enabled: enabled,
	}); err != nil {
		return b.respondPlayerError(s, i, err)
	}

	if enabled {
		return RespondWithMessage(s, i, "Autoplay is **on**. I'll keep the music going when the queue drains.")
	}
	return RespondWithMessage(s, i, "Autoplay is **off**.")
}

// handleSetup pins the live status display to the invoking channel and
// records it so the UI sync can keep it updated
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	msg, err := s.ChannelMessageSendEmbed(i.ChannelID, renderIdleEmbed())
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Could not post the status message: %v", err))
	}

	if err := b.configRepo.SetCentralDisplay(ctx, &guildconfig.SetCentralDisplayInput{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		MessageID: msg.ID,
	}); err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Could not save the display location: %v", err))
	}

	return RespondWithEphemeralMessage(s, i, "Status display set up. It will follow playback from now on.")
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	window := stats.ParseWindow(stringOption(i, "window"))
	view := stringOption(i, "view")

	switch view {
	case "tracks":
		out, err := b.stats.TopTracks(ctx, &stats.TopTracksInput{GuildID: i.GuildID, Window: window})
		if err != nil {
			return RespondWithError(s, i, fmt.Sprintf("Could not load stats: %v", err))
		}
		return RespondWithEmbed(s, i, renderTopTracksEmbed(window, out))

	case "listeners":
		out, err := b.stats.TopListeners(ctx, &stats.TopListenersInput{GuildID: i.GuildID, Window: window})
		if err != nil {
			return RespondWithError(s, i, fmt.Sprintf("Could not load stats: %v", err))
		}
		return RespondWithEmbed(s, i, renderTopListenersEmbed(window, out))

	case "me":
		out, err := b.stats.UserSummary(ctx, &stats.UserSummaryInput{
			GuildID: i.GuildID,
			UserID:  i.Member.User.ID,
			Window:  window,
		})
		if err != nil {
			return RespondWithError(s, i, fmt.Sprintf("Could not load stats: %v", err))
		}
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf(
			"You played **%d** track(s) (%s) in the %s.",
			out.Plays, formatDuration(out.TotalMs), windowLabel(window)))

	default:
		out, err := b.stats.GuildSummary(ctx, &stats.GuildSummaryInput{GuildID: i.GuildID, Window: window})
		if err != nil {
			return RespondWithError(s, i, fmt.Sprintf("Could not load stats: %v", err))
		}
		return RespondWithEmbed(s, i, renderGuildStatsEmbed(window, out))
	}
}
