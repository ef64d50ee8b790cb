package plays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/velrin/cadence/internal/models"
)

const (
	// Key prefixes for Redis
	recordKeyPrefix = "plays:record:"
	indexKeyPrefix  = "plays:index:"
)

// ErrRecordNotFound is returned when updating a record that does not exist
var ErrRecordNotFound = errors.New("play record not found")

// Config holds configuration for the Redis plays repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis. Records
// are stored as JSON blobs keyed by ID, with a per-guild sorted set scored
// by StartedAt for windowed range reads.
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed plays repository
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

func recordKey(id string) string {
	return fmt.Sprintf("%s%s", recordKeyPrefix, id)
}

func indexKey(guildID string) string {
	return fmt.Sprintf("%s%s", indexKeyPrefix, guildID)
}

// AppendRecord stores a new play record and indexes it by start time
func (r *redisRepository) AppendRecord(ctx context.Context, input *AppendRecordInput) error {
	if input == nil || input.Record == nil {
		return errors.New("input and record cannot be nil")
	}
	if input.Record.ID == "" || input.Record.GuildID == "" {
		return errors.New("record ID and guild ID are required")
	}

	data, err := json.Marshal(input.Record)
	if err != nil {
		return fmt.Errorf("failed to marshal play record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, recordKey(input.Record.ID), data, 0)
	pipe.ZAdd(ctx, indexKey(input.Record.GuildID), redis.Z{
		Score:  float64(input.Record.StartedAt.UnixMilli()),
		Member: input.Record.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append play record: %w", err)
	}

	return nil
}

// UpdateRecord rewrites an existing play record in place. The index entry
// keeps its original start-time score.
func (r *redisRepository) UpdateRecord(ctx context.Context, input *UpdateRecordInput) error {
	if input == nil || input.Record == nil {
		return errors.New("input and record cannot be nil")
	}
	if input.Record.ID == "" {
		return errors.New("record ID is required")
	}

	exists, err := r.client.Exists(ctx, recordKey(input.Record.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check play record: %w", err)
	}
	if exists == 0 {
		return ErrRecordNotFound
	}

	data, err := json.Marshal(input.Record)
	if err != nil {
		return fmt.Errorf("failed to marshal play record: %w", err)
	}

	if err := r.client.Set(ctx, recordKey(input.Record.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update play record: %w", err)
	}

	return nil
}

// GetRecordsSince retrieves a guild's records in start-time order
func (r *redisRepository) GetRecordsSince(ctx context.Context, input *GetRecordsSinceInput) (*GetRecordsSinceOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	min := "-inf"
	if !input.Since.IsZero() {
		min = strconv.FormatInt(input.Since.UnixMilli(), 10)
	}

	ids, err := r.client.ZRangeByScore(ctx, indexKey(input.GuildID), &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read play index: %w", err)
	}

	if len(ids) == 0 {
		return &GetRecordsSinceOutput{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, recordKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read play records: %w", err)
	}

	records := make([]*models.PlayRecord, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			// index entry outlived its record, skip it
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read play record: %w", err)
		}

		var record models.PlayRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal play record: %w", err)
		}
		records = append(records, &record)
	}

	return &GetRecordsSinceOutput{Records: records}, nil
}
