package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/velrin/cadence/internal/models"
)

// memberVoiceChannel returns the voice channel a member currently occupies,
// empty when they are not in voice
func (b *Bot) memberVoiceChannel(s *discordgo.Session, guildID, userID string) string {
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// voiceGate checks that the invoking member shares a voice channel with the
// bot; control commands require it
func (b *Bot) voiceGate(s *discordgo.Session, i *discordgo.InteractionCreate) (string, bool) {
	memberChannel := b.memberVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if memberChannel == "" {
		return "Join a voice channel first.", false
	}

	botChannel := b.memberVoiceChannel(s, i.GuildID, s.State.User.ID)
	if botChannel != "" && botChannel != memberChannel {
		return "You need to be in my voice channel to do that.", false
	}

	return "", true
}

// collectEligibleDJs returns the DJ-role members currently in the given
// voice channel, excluding bots and the requester
func (b *Bot) collectEligibleDJs(s *discordgo.Session, guildID, channelID string, cfg *models.GuildConfig, requesterID string) []string {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil
	}

	var djs []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID || vs.UserID == requesterID {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil || member.User == nil || member.User.Bot {
			continue
		}
		if cfg.HasDJRole(member.Roles) {
			djs = append(djs, vs.UserID)
		}
	}
	return djs
}

// onVoiceServerUpdate forwards voice server credentials to the audio backend
func (b *Bot) onVoiceServerUpdate(s *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	b.voiceRelay.HandleVoiceServerUpdate(e.GuildID, e.Token, e.Endpoint)
}

// onVoiceStateUpdate forwards the bot's own voice session to the backend
// and watches for the last human leaving the bot's channel
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.UserID == s.State.User.ID {
		if e.ChannelID != "" {
			b.voiceRelay.HandleVoiceStateUpdate(e.GuildID, e.SessionID)
		}
		return
	}

	b.checkVoiceChannelEmptied(s, e.GuildID)
}

// checkVoiceChannelEmptied fires the empty-channel signal when no human
// members remain in the bot's voice channel
func (b *Bot) checkVoiceChannelEmptied(s *discordgo.Session, guildID string) {
	botChannel := b.memberVoiceChannel(s, guildID, s.State.User.ID)
	if botChannel == "" {
		return
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return
	}

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != botChannel {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil || member.User == nil {
			continue
		}
		if !member.User.Bot {
			return
		}
	}

	b.logger.WithField("guild_id", guildID).Debug("Voice channel emptied")
	b.player.VoiceChannelEmptied(context.Background(), guildID)
}
