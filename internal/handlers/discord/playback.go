package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/services/player"
)

const defaultSeekStep = 10 * time.Second

// requesterFrom builds the requester identity from the invoking member
func requesterFrom(i *discordgo.InteractionCreate) models.Requester {
	name := i.Member.User.Username
	if i.Member.Nick != "" {
		name = i.Member.Nick
	}
	return models.Requester{
		ID:          i.Member.User.ID,
		DisplayName: name,
	}
}

// handlePlay runs the full play flow: voice gate, session join, then either
// the direct pipeline or the DJ approval detour
func (b *Bot) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	voiceChannelID := b.memberVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if voiceChannelID == "" {
		return RespondWithEphemeralMessage(s, i, "Join a voice channel first.")
	}

	if _, err := b.player.CreateOrJoin(ctx, &player.CreateOrJoinInput{
		GuildID:        i.GuildID,
		VoiceChannelID: voiceChannelID,
		TextChannelID:  i.ChannelID,
	}); err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Could not join your voice channel: %v", err))
	}

	query := stringOption(i, "query")

	cfg := b.guildSettings(ctx, i.GuildID)
	if cfg.DJRequestMode && !cfg.HasDJRole(i.Member.Roles) {
		return b.submitPlayRequest(ctx, s, i, query, voiceChannelID)
	}

	out, err := b.player.PlaySong(ctx, &player.PlaySongInput{
		GuildID:   i.GuildID,
		Query:     query,
		Requester: requesterFrom(i),
	})
	if err != nil {
		if errors.Is(err, player.ErrEmptyQuery) {
			return RespondWithEphemeralMessage(s, i, "Give me something to play.")
		}
		return RespondWithError(s, i, fmt.Sprintf("Playback failed: %v", err))
	}

	return b.respondPlayResult(s, i, out.Result)
}

// respondPlayResult renders the pipeline outcome back to the user
func (b *Bot) respondPlayResult(s *discordgo.Session, i *discordgo.InteractionCreate, result *player.PlayResult) error {
	switch result.Kind {
	case player.ResultKindTrack:
		verb := "Added to queue"
		if result.Started {
			verb = "Now playing"
		}
		return RespondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       verb,
			Description: trackLine(result.Track),
			Color:       colorPlaying,
		})

	case player.ResultKindPlaylist:
		name := "playlist"
		if result.Playlist != nil && result.Playlist.Name != "" {
			name = result.Playlist.Name
		}
		return RespondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Playlist queued",
			Description: fmt.Sprintf("Added **%d** track(s) from **%s**.", result.TrackCount, name),
			Color:       colorPlaying,
		})

	case player.ResultKindDuplicate:
		return b.respondDuplicatePrompt(s, i, result)

	default:
		return RespondWithError(s, i, result.Message)
	}
}

// respondDuplicatePrompt offers the requester the three-way duplicate choice
func (b *Bot) respondDuplicatePrompt(s *discordgo.Session, i *discordgo.InteractionCreate, result *player.PlayResult) error {
	match := result.Duplicate

	where := "is already playing"
	if match.Location == player.DuplicateLocationQueue {
		where = fmt.Sprintf("is already queued at position %d", match.Position)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Duplicate track",
		Description: fmt.Sprintf("%s %s. What do you want to do?", trackLine(result.Track), where),
		Color:       colorWarning,
	}

	requesterID := i.Member.User.ID
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Add anyway",
			Style:    discordgo.PrimaryButton,
			CustomID: componentDuplicateAdd + requesterID,
		},
		discordgo.Button{
			Label:    "Loop it",
			Style:    discordgo.SecondaryButton,
			CustomID: componentDuplicateLoop + requesterID,
		},
		discordgo.Button{
			Label:    "Cancel",
			Style:    discordgo.DangerButton,
			CustomID: componentDuplicateCancel + requesterID,
		},
	}

	return RespondWithEmbedAndButtons(s, i, embed, buttons)
}

// submitPlayRequest resolves the query and parks it for DJ approval
func (b *Bot) submitPlayRequest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, query, voiceChannelID string) error {
	normalized := player.ResolveQuery(query)
	if normalized == "" {
		return RespondWithEphemeralMessage(s, i, "Give me something to play.")
	}

	resolved, err := b.backend.Resolve(ctx, normalized)
	if err != nil || resolved.Kind == audio.LoadKindError || len(resolved.Tracks) == 0 {
		return RespondWithEphemeralMessage(s, i, "Nothing found for that query.")
	}
	track := resolved.Tracks[0]
	track.Requester = requesterFrom(i)

	cfg := b.guildSettings(ctx, i.GuildID)
	approvers := b.collectEligibleDJs(s, i.GuildID, voiceChannelID, cfg, i.Member.User.ID)
	if len(approvers) == 0 {
		return RespondWithEphemeralMessage(s, i, "No DJ is around to approve requests right now.")
	}

	out, err := b.player.SubmitRequest(ctx, &player.SubmitRequestInput{
		GuildID:             i.GuildID,
		Track:               track,
		RequesterID:         i.Member.User.ID,
		EligibleApproverIDs: approvers,
	})
	if err != nil {
		return RespondWithError(s, i, fmt.Sprintf("Could not submit request: %v", err))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Track request",
		Description: fmt.Sprintf("<@%s> wants to play %s. A DJ has %s to decide.",
			i.Member.User.ID, trackLine(track), out.ExpiresIn),
		Color: colorInfo,
	}
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Approve",
			Style:    discordgo.SuccessButton,
			CustomID: componentRequestApprove + out.RequestID,
		},
		discordgo.Button{
			Label:    "Reject",
			Style:    discordgo.DangerButton,
			CustomID: componentRequestReject + out.RequestID,
		},
	}

	return RespondWithEmbedAndButtons(s, i, embed, buttons)
}

func (b *Bot) handlePause(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return b.setPaused(s, i, true, "Paused.")
}

func (b *Bot) handleResume(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return b.setPaused(s, i, false, "Resumed.")
}

func (b *Bot) setPaused(s *discordgo.Session, i *discordgo.InteractionCreate, paused bool, confirmation string) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}
	err := b.player.Pause(context.Background(), &player.PauseInput{GuildID: i.GuildID, Paused: paused})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, confirmation)
}

func (b *Bot) handleSkip(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	out, err := b.player.Skip(context.Background(), &player.SkipInput{GuildID: i.GuildID})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	if out.Next == nil {
		return RespondWithMessage(s, i, "Skipped. The queue is empty now.")
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Skipped. Now playing **%s**.", out.Next.DisplayTitle()))
}

func (b *Bot) handlePrevious(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	out, err := b.player.Previous(context.Background(), &player.PreviousInput{GuildID: i.GuildID})
	if errors.Is(err, player.ErrNoPrevious) {
		return RespondWithEphemeralMessage(s, i, "There is no previous track.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Replaying **%s**.", out.Track.DisplayTitle()))
}

func (b *Bot) handleForward(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	seconds := intOptionValue(i, "seconds", int64(defaultSeekStep/time.Second))
	return b.seekBy(s, i, time.Duration(seconds)*time.Second)
}

func (b *Bot) handleRewind(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	seconds := intOptionValue(i, "seconds", int64(defaultSeekStep/time.Second))
	return b.seekBy(s, i, -time.Duration(seconds)*time.Second)
}

func (b *Bot) seekBy(s *discordgo.Session, i *discordgo.InteractionCreate, offset time.Duration) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	err := b.player.Seek(context.Background(), &player.SeekInput{GuildID: i.GuildID, Offset: offset})
	if errors.Is(err, player.ErrQueueEmpty) {
		return RespondWithEphemeralMessage(s, i, "Nothing is playing.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}

	direction := "Skipped ahead"
	if offset < 0 {
		direction = "Went back"
		offset = -offset
	}
	return RespondWithMessage(s, i, fmt.Sprintf("%s %s.", direction, offset))
}

func (b *Bot) handleVolume(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	level := int(intOptionValue(i, "level", 100))
	err := b.player.SetVolume(context.Background(), &player.SetVolumeInput{GuildID: i.GuildID, Volume: level})
	if errors.Is(err, player.ErrInvalidVolume) {
		return RespondWithEphemeralMessage(s, i, "Volume must be between 1 and 100.")
	}
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Volume set to %d%%.", level))
}

func (b *Bot) handleLoop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	mode := models.ParseLoopMode(stringOption(i, "mode"))
	err := b.player.SetLoop(context.Background(), &player.SetLoopInput{GuildID: i.GuildID, Mode: mode})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, fmt.Sprintf("Loop mode: **%s**.", loopLabel(mode)))
}

func (b *Bot) handleNowPlaying(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	out, err := b.player.NowPlaying(context.Background(), &player.NowPlayingInput{GuildID: i.GuildID})
	if err != nil {
		return b.respondPlayerError(s, i, err)
	}
	if out.Display == nil {
		return RespondWithEphemeralMessage(s, i, "Nothing is playing.")
	}
	return RespondWithEmbed(s, i, renderNowPlayingEmbed(out.Display))
}

func (b *Bot) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if msg, ok := b.voiceGate(s, i); !ok {
		return RespondWithEphemeralMessage(s, i, msg)
	}

	if err := b.player.Stop(context.Background(), &player.StopInput{GuildID: i.GuildID}); err != nil {
		return b.respondPlayerError(s, i, err)
	}
	return RespondWithMessage(s, i, "Stopped and left the voice channel.")
}

// respondPlayerError maps service errors to user-facing replies
func (b *Bot) respondPlayerError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	if errors.Is(err, player.ErrNoSession) {
		return RespondWithEphemeralMessage(s, i, "I'm not playing anything in this server.")
	}
	return RespondWithError(s, i, err.Error())
}
