package models

// CentralDisplay points at the persistent status message for a guild
type CentralDisplay struct {
	// ChannelID is the channel holding the status message
	ChannelID string

	// MessageID is the status message itself
	MessageID string
}

// IsSet returns true when a central display message has been configured
func (d CentralDisplay) IsSet() bool {
	return d.ChannelID != "" && d.MessageID != ""
}

// GuildConfig holds the persisted per-guild settings
type GuildConfig struct {
	// GuildID is the Discord guild these settings belong to
	GuildID string

	// AlwaysOn keeps the bot connected even with an empty queue (24/7 mode)
	AlwaysOn bool

	// Autoplay continues with related tracks when the queue drains
	Autoplay bool

	// DJRequestMode requires non-DJ users to have requests approved
	DJRequestMode bool

	// AllowedDJRoleIDs are the roles treated as DJs
	AllowedDJRoleIDs []string

	// NowPlayingAnnounce posts an announcement when a track starts
	NowPlayingAnnounce bool

	// DuplicateWarning enables the duplicate-track prompt on play
	DuplicateWarning bool

	// DefaultVolume is applied to newly created sessions, 1-100
	DefaultVolume int

	// CentralDisplay is the synced status message, if configured
	CentralDisplay CentralDisplay
}

// DefaultGuildConfig is what a guild gets before anyone saves settings
func DefaultGuildConfig(guildID string) *GuildConfig {
	return &GuildConfig{
		GuildID:          guildID,
		DuplicateWarning: true,
		DefaultVolume:    100,
	}
}

// HasDJRole reports whether any of the member's roles is a DJ role.
// A guild with no configured DJ roles treats everyone as a DJ.
func (c *GuildConfig) HasDJRole(memberRoleIDs []string) bool {
	if len(c.AllowedDJRoleIDs) == 0 {
		return true
	}
	for _, allowed := range c.AllowedDJRoleIDs {
		for _, have := range memberRoleIDs {
			if allowed == have {
				return true
			}
		}
	}
	return false
}
