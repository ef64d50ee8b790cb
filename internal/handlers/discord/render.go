package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/velrin/cadence/internal/models"
	"github.com/velrin/cadence/internal/services/player"
	"github.com/velrin/cadence/internal/services/stats"
)

// Embed colors
const (
	colorPlaying = 0x1db954
	colorInfo    = 0x5865f2
	colorWarning = 0xfee75c
	colorError   = 0xed4245
	colorIdle    = 0x99aab5
)

// formatDuration renders milliseconds as m:ss or h:mm:ss
func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// trackLine renders a track as a markdown link with duration
func trackLine(track *models.Track) string {
	title := track.DisplayTitle()
	if track.URI != "" {
		title = fmt.Sprintf("[%s](%s)", title, track.URI)
	}
	return fmt.Sprintf("%s `%s`", title, formatDuration(track.DurationMs))
}

// loopLabel renders a loop mode for display
func loopLabel(mode models.LoopMode) string {
	switch mode {
	case models.LoopModeTrack:
		return "Track"
	case models.LoopModeQueue:
		return "Queue"
	default:
		return "Off"
	}
}

// renderNowPlayingEmbed builds the now-playing embed from a display payload
func renderNowPlayingEmbed(display *player.DisplayInfo) *discordgo.MessageEmbed {
	track := display.Track

	status := "Now Playing"
	color := colorPlaying
	if display.Paused {
		status = "Paused"
		color = colorWarning
	}

	embed := &discordgo.MessageEmbed{
		Title:       status,
		Description: trackLine(track),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.DisplayAuthor(), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", display.Volume), Inline: true},
			{Name: "Loop", Value: loopLabel(display.Loop), Inline: true},
			{Name: "Up Next", Value: fmt.Sprintf("%d track(s)", display.QueueLength), Inline: true},
		},
	}

	if display.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: display.ArtworkURL}
	}
	if track.Requester.DisplayName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "Requested by " + track.Requester.DisplayName,
		}
	}

	return embed
}

// renderIdleEmbed is the central display's resting state
func renderIdleEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Nothing playing",
		Description: "Use `/play` to queue something up.",
		Color:       colorIdle,
	}
}

// maxQueueLines bounds the queue embed; Discord caps description length
const maxQueueLines = 10

// renderQueueEmbed builds the queue listing embed
func renderQueueEmbed(snap *player.QueueSnapshotOutput) *discordgo.MessageEmbed {
	var sb strings.Builder

	if snap.Current != nil {
		sb.WriteString("**Now playing**\n")
		sb.WriteString(trackLine(snap.Current))
		sb.WriteString("\n\n")
	}

	if len(snap.Queue) == 0 {
		sb.WriteString("The queue is empty.")
	} else {
		sb.WriteString("**Up next**\n")
		for idx, track := range snap.Queue {
			if idx == maxQueueLines {
				sb.WriteString(fmt.Sprintf("…and %d more", len(snap.Queue)-maxQueueLines))
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n", idx+1, trackLine(track)))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: sb.String(),
		Color:       colorInfo,
	}

	var total int64
	for _, track := range snap.Queue {
		total += track.DurationMs
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%d track(s) • %s total", len(snap.Queue), formatDuration(total)),
	}

	return embed
}

// windowLabel renders a stats window for embed titles
func windowLabel(window stats.Window) string {
	switch window {
	case stats.WindowDay:
		return "last 24 hours"
	case stats.WindowWeek:
		return "last 7 days"
	case stats.WindowMonth:
		return "last 30 days"
	default:
		return "all time"
	}
}

// renderGuildStatsEmbed builds the server listening summary embed
func renderGuildStatsEmbed(window stats.Window, summary *stats.GuildSummaryOutput) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Server listening stats (" + windowLabel(window) + ")",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Plays", Value: fmt.Sprintf("%d", summary.Plays), Inline: true},
			{Name: "Listening time", Value: formatDuration(summary.TotalMs), Inline: true},
			{Name: "Listeners", Value: fmt.Sprintf("%d", summary.Listeners), Inline: true},
		},
	}
}

// renderTopTracksEmbed builds the most-played-tracks embed
func renderTopTracksEmbed(window stats.Window, out *stats.TopTracksOutput) *discordgo.MessageEmbed {
	var sb strings.Builder
	if len(out.Tracks) == 0 {
		sb.WriteString("No plays recorded yet.")
	}
	for idx, row := range out.Tracks {
		title := row.Title
		if row.URI != "" {
			title = fmt.Sprintf("[%s](%s)", row.Title, row.URI)
		}
		sb.WriteString(fmt.Sprintf("%d. %s • %d play(s), %s\n",
			idx+1, title, row.Plays, formatDuration(row.TotalMs)))
	}

	return &discordgo.MessageEmbed{
		Title:       "Top tracks (" + windowLabel(window) + ")",
		Description: sb.String(),
		Color:       colorInfo,
	}
}

// renderTopListenersEmbed builds the most-active-listeners embed
func renderTopListenersEmbed(window stats.Window, out *stats.TopListenersOutput) *discordgo.MessageEmbed {
	var sb strings.Builder
	if len(out.Listeners) == 0 {
		sb.WriteString("No plays recorded yet.")
	}
	for idx, row := range out.Listeners {
		name := row.Tag
		if name == "" {
			name = fmt.Sprintf("<@%s>", row.UserID)
		}
		sb.WriteString(fmt.Sprintf("%d. %s • %d play(s), %s\n",
			idx+1, name, row.Plays, formatDuration(row.TotalMs)))
	}

	return &discordgo.MessageEmbed{
		Title:       "Top listeners (" + windowLabel(window) + ")",
		Description: sb.String(),
		Color:       colorInfo,
	}
}
