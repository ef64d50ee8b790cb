package discord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/services/player"
)

// NotifierConfig holds configuration for the channel notifier
type NotifierConfig struct {
	// Session is the shared Discord session
	Session *discordgo.Session

	// Logger is required
	Logger *logrus.Logger
}

// Notifier delivers playback notices to Discord channels and DMs. It keeps
// one now-playing announcement per guild, deleting the prior one before
// posting the next.
type Notifier struct {
	session *discordgo.Session
	logger  *logrus.Logger

	mu            sync.Mutex
	announcements map[string]announcementRef // guild ID -> last announcement
}

type announcementRef struct {
	channelID string
	messageID string
}

// NewNotifier creates a new Discord notifier
func NewNotifier(cfg *NotifierConfig) (*Notifier, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Notifier{
		session:       cfg.Session,
		logger:        cfg.Logger,
		announcements: make(map[string]announcementRef),
	}, nil
}

// AnnounceNowPlaying posts the now-playing announcement, replacing the
// guild's prior one
func (n *Notifier) AnnounceNowPlaying(guildID, textChannelID string, display *player.DisplayInfo) {
	if textChannelID == "" {
		return
	}

	n.mu.Lock()
	prior, hadPrior := n.announcements[guildID]
	n.mu.Unlock()

	if hadPrior {
		if err := n.session.ChannelMessageDelete(prior.channelID, prior.messageID); err != nil {
			n.logger.WithError(err).WithField("guild_id", guildID).Debug("Failed to delete prior announcement")
		}
	}

	msg, err := n.session.ChannelMessageSendEmbed(textChannelID, renderNowPlayingEmbed(display))
	if err != nil {
		n.logger.WithError(err).WithField("guild_id", guildID).Warn("Failed to post announcement")
		return
	}

	n.mu.Lock()
	n.announcements[guildID] = announcementRef{channelID: textChannelID, messageID: msg.ID}
	n.mu.Unlock()
}

// NotifyRequestResolved tells the requester their request was approved or
// rejected, via DM
func (n *Notifier) NotifyRequestResolved(request *models.PendingRequest, approved bool, actorID string) {
	dm, err := n.session.UserChannelCreate(request.RequesterID)
	if err != nil {
		n.logger.WithError(err).WithField("user_id", request.RequesterID).Debug("Failed to open DM")
		return
	}

	verdict := "rejected"
	if approved {
		verdict = "approved and queued"
	}
	content := fmt.Sprintf("Your request **%s** was %s by <@%s>.",
		request.Track.DisplayTitle(), verdict, actorID)

	if _, err := n.session.ChannelMessageSend(dm.ID, content); err != nil {
		n.logger.WithError(err).WithField("user_id", request.RequesterID).Debug("Failed to send DM")
	}
}

// NotifyTrackFailed reports a track that could not be played
func (n *Notifier) NotifyTrackFailed(guildID, textChannelID string, track *models.Track, remaining int) {
	if textChannelID == "" {
		return
	}

	title := "the current track"
	if track != nil {
		title = "**" + track.DisplayTitle() + "**"
	}
	content := fmt.Sprintf("Could not play %s, skipping. %d track(s) left in the queue.", title, remaining)
	if remaining == 0 {
		content = fmt.Sprintf("Could not play %s and the queue is empty.", title)
	}

	if _, err := n.session.ChannelMessageSend(textChannelID, content); err != nil {
		n.logger.WithError(err).WithField("guild_id", guildID).Warn("Failed to post failure notice")
	}
}
