package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/repositories/guildconfig"
	"github.com/velrin/cadence/internal/services/player"
	"github.com/velrin/cadence/internal/services/stats"
)

// VoiceRelay receives raw Discord voice credentials for the audio backend
type VoiceRelay interface {
	HandleVoiceServerUpdate(guildID, token, endpoint string)
	HandleVoiceStateUpdate(guildID, sessionID string)
}

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID

	player     player.Service
	stats      stats.Service
	configRepo guildconfig.Repository
	backend    audio.Client
	voiceRelay VoiceRelay
	logger     *logrus.Logger
	config     *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Session is the shared Discord session; built from Token when nil
	Session *discordgo.Session

	// Discord bot token, used only when Session is nil
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// PlayerService orchestrates playback
	PlayerService player.Service

	// StatsService serves listening history
	StatsService stats.Service

	// ConfigRepo reads and writes guild settings
	ConfigRepo guildconfig.Repository

	// Backend resolves queries for the request-approval flow
	Backend audio.Client

	// VoiceRelay forwards voice credentials to the audio backend
	VoiceRelay VoiceRelay

	// Logger is required
	Logger *logrus.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.PlayerService == nil {
		return nil, errors.New("player service cannot be nil")
	}
	if cfg.StatsService == nil {
		return nil, errors.New("stats service cannot be nil")
	}
	if cfg.ConfigRepo == nil {
		return nil, errors.New("config repository cannot be nil")
	}
	if cfg.Backend == nil {
		return nil, errors.New("audio backend cannot be nil")
	}
	if cfg.VoiceRelay == nil {
		return nil, errors.New("voice relay cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	session := cfg.Session
	if session == nil {
		if cfg.Token == "" {
			return nil, errors.New("token cannot be empty")
		}
		var err error
		session, err = discordgo.New("Bot " + cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to create Discord session: %w", err)
		}
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		player:     cfg.PlayerService,
		stats:      cfg.StatsService,
		configRepo: cfg.ConfigRepo,
		backend:    cfg.Backend,
		voiceRelay: cfg.VoiceRelay,
		logger:     cfg.Logger,
		config:     cfg,
	}

	session.AddHandler(bot.handleInteraction)
	session.AddHandler(bot.onVoiceServerUpdate)
	session.AddHandler(bot.onVoiceStateUpdate)

	return bot, nil
}

// Session exposes the underlying Discord session for collaborators created
// alongside the bot
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range b.commandSet() {
		if err := b.RegisterCommand(cmd); err != nil {
			return fmt.Errorf("failed to register %s command: %w", cmd.GetName(), err)
		}
	}

	b.logger.Info("Bot is now running")
	return nil
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.config.ApplicationID
	if appID == "" {
		appID = b.session.State.User.ID
	}

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.WithError(err).WithField("command", cmdName).Warn("Failed to delete command")
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	appID := b.config.ApplicationID
	if appID == "" {
		// Fall back to session user ID if application ID is not provided
		appID = b.session.State.User.ID
	}

	// A guild ID scopes the command to one server for development;
	// otherwise it registers globally
	createdCmd, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.WithFields(logrus.Fields{
		"command": cmd.GetName(),
		"id":      createdCmd.ID,
	}).Info("Registered command")

	return nil
}

// Component custom ID prefixes. The trailing segment carries the request ID
// for approval buttons and the requester's user ID for duplicate buttons.
const (
	componentRequestApprove  = "djreq_approve_"
	componentRequestReject   = "djreq_reject_"
	componentDuplicateAdd    = "dup_add_"
	componentDuplicateLoop   = "dup_loop_"
	componentDuplicateCancel = "dup_cancel_"
)

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.WithError(err).WithField("command", name).Error("Command failed")
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.WithError(err).Error("Component interaction failed")
		}
	}
}

// handleComponentInteraction routes button clicks by custom ID prefix
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID

	switch {
	case strings.HasPrefix(customID, componentRequestApprove):
		return b.handleRequestVerdict(s, i, strings.TrimPrefix(customID, componentRequestApprove), player.RequestDecisionApprove)
	case strings.HasPrefix(customID, componentRequestReject):
		return b.handleRequestVerdict(s, i, strings.TrimPrefix(customID, componentRequestReject), player.RequestDecisionReject)
	case strings.HasPrefix(customID, componentDuplicateAdd):
		return b.handleDuplicateChoice(s, i, strings.TrimPrefix(customID, componentDuplicateAdd), player.DuplicateResolutionAdd)
	case strings.HasPrefix(customID, componentDuplicateLoop):
		return b.handleDuplicateChoice(s, i, strings.TrimPrefix(customID, componentDuplicateLoop), player.DuplicateResolutionLoop)
	case strings.HasPrefix(customID, componentDuplicateCancel):
		return b.handleDuplicateChoice(s, i, strings.TrimPrefix(customID, componentDuplicateCancel), player.DuplicateResolutionCancel)
	default:
		return RespondWithError(s, i, fmt.Sprintf("Unknown button: %s", customID))
	}
}

// handleRequestVerdict applies a DJ's approve/reject button press
func (b *Bot) handleRequestVerdict(s *discordgo.Session, i *discordgo.InteractionCreate, requestID string, decision player.RequestDecision) error {
	ctx := context.Background()

	out, err := b.player.ResolveRequest(ctx, &player.ResolveRequestInput{
		RequestID: requestID,
		ActorID:   i.Member.User.ID,
		Decision:  decision,
	})
	switch {
	case errors.Is(err, player.ErrNotEligible):
		return RespondWithEphemeralMessage(s, i, "Only a DJ who was in the voice channel when this was requested can decide.")
	case errors.Is(err, player.ErrRequestExpired):
		return UpdateWithMessage(s, i, "This request has expired.")
	case errors.Is(err, player.ErrNoSession):
		return UpdateWithMessage(s, i, "The playback session is gone; the request stays pending until it expires.")
	case err != nil:
		return RespondWithError(s, i, fmt.Sprintf("Failed to resolve request: %v", err))
	}

	verdict := "rejected"
	if out.Approved {
		verdict = "approved and queued"
	}
	return UpdateWithMessage(s, i, fmt.Sprintf("**%s** was %s by <@%s>.",
		out.Request.Track.DisplayTitle(), verdict, i.Member.User.ID))
}

// handleDuplicateChoice applies the requester's duplicate-prompt button press
func (b *Bot) handleDuplicateChoice(s *discordgo.Session, i *discordgo.InteractionCreate, requesterID string, resolution player.DuplicateResolution) error {
	ctx := context.Background()

	out, err := b.player.ResolveDuplicate(ctx, &player.ResolveDuplicateInput{
		GuildID:     i.GuildID,
		RequesterID: requesterID,
		ActorID:     i.Member.User.ID,
		Resolution:  resolution,
	})
	switch {
	case errors.Is(err, player.ErrNotYourChoice):
		return RespondWithEphemeralMessage(s, i, "Only the person who requested this track can decide.")
	case errors.Is(err, player.ErrChoiceExpired):
		return UpdateWithMessage(s, i, "This prompt has expired.")
	case errors.Is(err, player.ErrNoSession):
		return UpdateWithMessage(s, i, "The playback session is gone.")
	case err != nil:
		return RespondWithError(s, i, fmt.Sprintf("Failed to resolve prompt: %v", err))
	}

	switch out.Resolution {
	case player.DuplicateResolutionAdd:
		return UpdateWithMessage(s, i, fmt.Sprintf("Queued **%s** anyway.", out.Track.DisplayTitle()))
	case player.DuplicateResolutionLoop:
		return UpdateWithMessage(s, i, "Loop mode set to **track** for the existing copy.")
	default:
		return UpdateWithMessage(s, i, "Request cancelled.")
	}
}

// guildSettings reads the guild's stored settings, defaulting when unset
func (b *Bot) guildSettings(ctx context.Context, guildID string) *models.GuildConfig {
	out, err := b.configRepo.Get(ctx, &guildconfig.GetInput{GuildID: guildID})
	if err != nil {
		if !errors.Is(err, guildconfig.ErrNotFound) {
			b.logger.WithError(err).WithField("guild_id", guildID).Warn("Guild config read failed")
		}
		return models.DefaultGuildConfig(guildID)
	}
	return out.Config
}
