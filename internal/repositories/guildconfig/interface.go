package guildconfig

import (
	"context"
)

// Repository defines the interface for guild settings persistence
type Repository interface {
	// Get retrieves the settings for a guild
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Save persists the full settings document for a guild
	Save(ctx context.Context, input *SaveInput) error

	// SetAlwaysOn toggles 24/7 mode for a guild
	SetAlwaysOn(ctx context.Context, input *SetAlwaysOnInput) error

	// SetCentralDisplay records the synced status message for a guild
	SetCentralDisplay(ctx context.Context, input *SetCentralDisplayInput) error
}
