package discord

import (
	"github.com/bwmarrin/discordgo"
)

// commandSet builds every slash command the bot registers
func (b *Bot) commandSet() []CommandHandler {
	intOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}

	windowOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "window",
		Description: "Time range",
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Last 24 hours", Value: "24h"},
			{Name: "Last 7 days", Value: "7d"},
			{Name: "Last 30 days", Value: "30d"},
			{Name: "All time", Value: "all"},
		},
	}

	return []CommandHandler{
		&command{
			BaseCommand: BaseCommand{
				Name:        "play",
				Description: "Play a track or playlist by name or link",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "query",
						Description: "Song name or link",
						Required:    true,
					},
				},
			},
			handler: b.handlePlay,
		},
		&command{
			BaseCommand: BaseCommand{Name: "pause", Description: "Pause playback"},
			handler:     b.handlePause,
		},
		&command{
			BaseCommand: BaseCommand{Name: "resume", Description: "Resume playback"},
			handler:     b.handleResume,
		},
		&command{
			BaseCommand: BaseCommand{Name: "skip", Description: "Skip to the next track"},
			handler:     b.handleSkip,
		},
		&command{
			BaseCommand: BaseCommand{Name: "previous", Description: "Replay the previous track"},
			handler:     b.handlePrevious,
		},
		&command{
			BaseCommand: BaseCommand{Name: "queue", Description: "Show the queue"},
			handler:     b.handleQueue,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "remove",
				Description: "Remove a track from the queue",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("position", "Queue position to remove", true),
				},
			},
			handler: b.handleRemove,
		},
		&command{
			BaseCommand: BaseCommand{Name: "clear", Description: "Clear the queue"},
			handler:     b.handleClear,
		},
		&command{
			BaseCommand: BaseCommand{Name: "shuffle", Description: "Shuffle the queue"},
			handler:     b.handleShuffle,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "move",
				Description: "Move a track to another queue position",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("from", "Current position", true),
					intOption("to", "New position", true),
				},
			},
			handler: b.handleMove,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "jump",
				Description: "Jump to a queue position, skipping everything before it",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("position", "Queue position to jump to", true),
				},
			},
			handler: b.handleJump,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "forward",
				Description: "Seek forward in the current track",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("seconds", "Seconds to skip ahead (default 10)", false),
				},
			},
			handler: b.handleForward,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "rewind",
				Description: "Seek backward in the current track",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("seconds", "Seconds to go back (default 10)", false),
				},
			},
			handler: b.handleRewind,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "volume",
				Description: "Set playback volume",
				Options: []*discordgo.ApplicationCommandOption{
					intOption("level", "Volume, 1-100", true),
				},
			},
			handler: b.handleVolume,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "loop",
				Description: "Set loop mode",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "mode",
						Description: "Loop mode",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Off", Value: "off"},
							{Name: "Track", Value: "track"},
							{Name: "Queue", Value: "queue"},
						},
					},
				},
			},
			handler: b.handleLoop,
		},
		&command{
			BaseCommand: BaseCommand{Name: "nowplaying", Description: "Show the current track"},
			handler:     b.handleNowPlaying,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "stats",
				Description: "Listening history for this server",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "view",
						Description: "What to show",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Summary", Value: "summary"},
							{Name: "Top tracks", Value: "tracks"},
							{Name: "Top listeners", Value: "listeners"},
							{Name: "My stats", Value: "me"},
						},
					},
					windowOption,
				},
			},
			handler: b.handleStats,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "247",
				Description: "Toggle 24/7 mode (stay connected with an empty queue)",
			},
			handler: b.handleAlwaysOn,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "autoplay",
				Description: "Toggle autoplay continuation when the queue drains",
			},
			handler: b.handleAutoplay,
		},
		&command{
			BaseCommand: BaseCommand{
				Name:        "setup",
				Description: "Pin the live status display to this channel",
			},
			handler: b.handleSetup,
		},
		&command{
			BaseCommand: BaseCommand{Name: "stop", Description: "Stop playback and leave the voice channel"},
			handler:     b.handleStop,
		},
	}
}

// commandOptions indexes an interaction's options by name
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	indexed := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		indexed[opt.Name] = opt
	}
	return indexed
}

// stringOption returns a string option value or empty
func stringOption(i *discordgo.InteractionCreate, name string) string {
	if opt, ok := commandOptions(i)[name]; ok {
		return opt.StringValue()
	}
	return ""
}

// intOptionValue returns an integer option value or the fallback
func intOptionValue(i *discordgo.InteractionCreate, name string, fallback int64) int64 {
	if opt, ok := commandOptions(i)[name]; ok {
		return opt.IntValue()
	}
	return fallback
}
