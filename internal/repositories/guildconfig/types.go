package guildconfig

import "github.com/velrin/cadence/internal/models"

type GetInput struct {
	GuildID string
}

type GetOutput struct {
	Config *models.GuildConfig
}

type SaveInput struct {
	Config *models.GuildConfig
}

type SetAlwaysOnInput struct {
	GuildID  string
	AlwaysOn bool
}

type SetCentralDisplayInput struct {
	GuildID   string
	ChannelID string
	MessageID string
}
