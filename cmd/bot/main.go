package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/audio/lavalink"
	"github.com/velrin/cadence/internal/handlers/discord"
	"github.com/velrin/cadence/internal/repositories/guildconfig"
	"github.com/velrin/cadence/internal/repositories/plays"
	"github.com/velrin/cadence/internal/services/player"
	"github.com/velrin/cadence/internal/services/stats"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	discordToken := getEnv("DISCORD_TOKEN", "")
	if discordToken == "" {
		logger.Fatal("DISCORD_TOKEN environment variable is required")
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	// Initialize repositories
	configRepo, err := guildconfig.NewRedis(&guildconfig.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create guild config repository")
	}

	playsRepo, err := plays.NewRedis(&plays.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create plays repository")
	}

	// Initialize stats service
	statsSvc, err := stats.New(&stats.Config{
		PlaysRepo: playsRepo,
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create stats service")
	}

	// The Discord session is shared by the bot, the notifier, the display
	// sync and the voice connector
	session, err := discordgo.New("Bot " + discordToken)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Discord session")
	}

	// The backend wants its event handler up front and the player service
	// wants the backend up front; the relay lets both be built
	relay := &audio.HandlerRelay{}

	backend, err := lavalink.New(&lavalink.Config{
		Address:  getEnv("LAVALINK_ADDR", "localhost:2333"),
		Password: getEnv("LAVALINK_PASSWORD", "youshallnotpass"),
		UserID:   getEnv("APPLICATION_ID", ""),
		Secure:   getEnv("LAVALINK_SECURE", "") == "true",
		Handler:  relay,
		ConnectVoice: func(guildID, channelID string) error {
			// an empty channel ID sends a null channel, leaving voice
			return session.ChannelVoiceJoinManual(guildID, channelID, false, true)
		},
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Lavalink")
	}

	notifier, err := discord.NewNotifier(&discord.NotifierConfig{
		Session: session,
		Logger:  logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create notifier")
	}

	display, err := discord.NewDisplay(&discord.DisplayConfig{
		Session:    session,
		ConfigRepo: configRepo,
		Logger:     logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create display sync")
	}

	playerSvc, err := player.New(&player.Config{
		Backend:    backend,
		ConfigRepo: configRepo,
		Stats:      statsSvc,
		UISync:     display,
		Notifier:   notifier,
		Logger:     logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create player service")
	}
	relay.Bind(playerSvc)

	// Initialize Discord bot
	bot, err := discord.New(&discord.Config{
		Session:       session,
		ApplicationID: getEnv("APPLICATION_ID", ""),
		GuildID:       getEnv("GUILD_ID", ""),
		PlayerService: playerSvc,
		StatsService:  statsSvc,
		ConfigRepo:    configRepo,
		Backend:       backend,
		VoiceRelay:    backend,
		Logger:        logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Discord bot")
	}

	if err := bot.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start Discord bot")
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := bot.Stop(); err != nil {
		logger.WithError(err).Error("Error stopping bot")
	}
	if err := backend.Close(); err != nil {
		logger.WithError(err).Error("Error closing Lavalink connection")
	}

	logger.Info("Bot has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
