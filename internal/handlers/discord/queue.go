package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/velrin/cadence/internal/services/player"
)

func (b *Bot) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	snap, err := b.player.QueueSnapshot(context.Background(), &player.QueueSnapshotInput{GuildID: i.GuildID})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithEmbed(s, i, renderQueueEmbed(snap))
}

func (b *Bot) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	position := int(intOptionValue(i, "position", 0))
	out, err := b.player.RemoveTrack(context.Background(), &player.RemoveTrackInput{
		GuildID:  i.GuildID,
		Position: position,
	})
	if errors.Is(err, player.ErrInvalidPosition) {
		return RespondWithEphemeralMessage(s, i, "There is no track at that position.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Removed **%s**.", out.Removed.DisplayTitle()))
}

func (b *Bot) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	out, err := b.player.ClearQueue(context.Background(), &player.ClearQueueInput{GuildID: i.GuildID})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Cleared %d track(s) from the queue.", out.Dropped))
}

func (b *Bot) handleShuffle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	if err := b.player.Shuffle(context.Background(), &player.ShuffleInput{GuildID: i.GuildID}); err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, "Shuffled the queue.")
}

func (b *Bot) handleMove(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	from := int(intOptionValue(i, "from", 0))
	to := int(intOptionValue(i, "to", 0))
	err := b.player.MoveTrack(context.Background(), &player.MoveTrackInput{
		GuildID: i.GuildID,
		From:    from,
		To:      to,
	})
	if errors.Is(err, player.ErrInvalidPosition) {
		return RespondWithEphemeralMessage(s, i, "Those positions are out of range.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Moved track %d to position %d.", from, to))
}

func (b *Bot) handleJump(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	position := int(intOptionValue(i, "position", 0))
	out, err := b.player.Jump(context.Background(), &player.JumpInput{
		GuildID:  i.GuildID,
		Position: position,
	})
	if errors.Is(err, player.ErrInvalidPosition) {
		return RespondWithEphemeralMessage(s, i, "There is no track at that position.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Jumped to **%s**, dropped %d track(s).",
		out.Track.DisplayTitle(), out.Skipped))
}
