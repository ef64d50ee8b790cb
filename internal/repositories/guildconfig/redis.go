package guildconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/velrin/cadence/internal/models"
)

const (
	// Key prefix for Redis
	configKeyPrefix = "guildconfig:"
)

// ErrNotFound is returned when a guild has no stored settings
var ErrNotFound = errors.New("guild config not found")

// Config holds configuration for the Redis guild config repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed guild config repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func configKey(guildID string) string {
	return fmt.Sprintf("%s%s", configKeyPrefix, guildID)
}

// Get retrieves the settings for a guild
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	data, err := r.client.Get(ctx, configKey(input.GuildID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}

	var cfg models.GuildConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guild config: %w", err)
	}

	return &GetOutput{Config: &cfg}, nil
}

// Save persists the full settings document for a guild
func (r *redisRepository) Save(ctx context.Context, input *SaveInput) error {
	if input == nil || input.Config == nil {
		return errors.New("input and config cannot be nil")
	}
	if input.Config.GuildID == "" {
		return errors.New("guild ID is required")
	}

	data, err := json.Marshal(input.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal guild config: %w", err)
	}

	if err := r.client.Set(ctx, configKey(input.Config.GuildID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save guild config: %w", err)
	}

	return nil
}

// SetAlwaysOn toggles 24/7 mode, creating the settings document if needed
func (r *redisRepository) SetAlwaysOn(ctx context.Context, input *SetAlwaysOnInput) error {
	if input == nil || input.GuildID == "" {
		return errors.New("input and guild ID cannot be empty")
	}

	cfg, err := r.getOrDefault(ctx, input.GuildID)
	if err != nil {
		return err
	}

	cfg.AlwaysOn = input.AlwaysOn
	return r.Save(ctx, &SaveInput{Config: cfg})
}

// SetCentralDisplay records the synced status message for a guild
func (r *redisRepository) SetCentralDisplay(ctx context.Context, input *SetCentralDisplayInput) error {
	if input == nil || input.GuildID == "" {
		return errors.New("input and guild ID cannot be empty")
	}

	cfg, err := r.getOrDefault(ctx, input.GuildID)
	if err != nil {
		return err
	}

	cfg.CentralDisplay = models.CentralDisplay{
		ChannelID: input.ChannelID,
		MessageID: input.MessageID,
	}
	return r.Save(ctx, &SaveInput{Config: cfg})
}

func (r *redisRepository) getOrDefault(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	out, err := r.Get(ctx, &GetInput{GuildID: guildID})
	if errors.Is(err, ErrNotFound) {
		return &models.GuildConfig{GuildID: guildID}, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Config, nil
}
