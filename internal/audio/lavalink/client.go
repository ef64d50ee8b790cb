// Package lavalink implements the audio backend port against a Lavalink v4
// node: track resolution over REST, transport control through the sessions
// API, and lifecycle events over the node websocket.
package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/velrin/cadence/internal/audio"
)

const (
	reconnectDelay = 5 * time.Second
	restTimeout    = 10 * time.Second
)

// VoiceConnector asks the Discord gateway to join (or leave, with an empty
// channel ID) a voice channel. The gateway side lives in the handler layer;
// it is injected here to keep this package free of Discord types.
type VoiceConnector func(guildID, channelID string) error

// Config holds configuration for the Lavalink client
type Config struct {
	// Address is the node address, host:port
	Address string

	// Password is the node authorization password
	Password string

	// UserID is the bot's Discord user ID, sent on the websocket handshake
	UserID string

	// Secure selects wss/https transport
	Secure bool

	// Handler receives lifecycle events; required
	Handler audio.EventHandler

	// ConnectVoice joins the bot to voice channels; required
	ConnectVoice VoiceConnector

	// Logger is used for node-level logging; required
	Logger *logrus.Logger

	// HTTPClient overrides the REST client, mainly for tests
	HTTPClient *http.Client
}

// Client is a Lavalink v4 node client implementing audio.Client
type Client struct {
	cfg        *Config
	httpClient *http.Client
	logger     *logrus.Logger
	handler    audio.EventHandler

	mu        sync.Mutex
	sessionID string
	conn      *websocket.Conn
	closed    bool

	voiceMu sync.Mutex
	voice   map[string]*voiceState
}

type voiceState struct {
	token     string
	endpoint  string
	sessionID string
}

// New creates a Lavalink client and opens the node websocket
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, errors.New("node address is required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("event handler cannot be nil")
	}
	if cfg.ConnectVoice == nil {
		return nil, errors.New("voice connector cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: restTimeout}
	}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     cfg.Logger,
		handler:    cfg.Handler,
		voice:      make(map[string]*voiceState),
	}

	if err := c.connectWebsocket(); err != nil {
		return nil, fmt.Errorf("failed to connect to lavalink node: %w", err)
	}
	go c.readLoop()

	return c, nil
}

func (c *Client) scheme(ws bool) string {
	if ws {
		if c.cfg.Secure {
			return "wss"
		}
		return "ws"
	}
	if c.cfg.Secure {
		return "https"
	}
	return "http"
}

func (c *Client) connectWebsocket() error {
	header := http.Header{}
	header.Set("Authorization", c.cfg.Password)
	header.Set("User-Id", c.cfg.UserID)
	header.Set("Client-Name", "cadence/1.0")

	wsURL := fmt.Sprintf("%s://%s/v4/websocket", c.scheme(true), c.cfg.Address)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handler.NodeError(fmt.Errorf("node websocket read: %w", err))
			c.mu.Lock()
			closed = c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			time.Sleep(reconnectDelay)
			if rerr := c.connectWebsocket(); rerr != nil {
				c.handler.NodeError(fmt.Errorf("node reconnect failed: %w", rerr))
			}
			continue
		}

		c.dispatch(payload)
	}
}

func (c *Client) dispatch(payload []byte) {
	var frame struct {
		Op        string `json:"op"`
		SessionID string `json:"sessionId"`
		Type      string `json:"type"`
		GuildID   string `json:"guildId"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		c.logger.WithError(err).Warn("Dropping undecodable node frame")
		return
	}

	switch frame.Op {
	case "ready":
		c.mu.Lock()
		c.sessionID = frame.SessionID
		c.mu.Unlock()
		c.logger.WithField("session_id", frame.SessionID).Info("Lavalink node ready")
	case "event":
		c.dispatchEvent(frame.Type, frame.GuildID, payload)
	case "stats", "playerUpdate":
		// periodic node telemetry, nothing to do
	}
}

func (c *Client) dispatchEvent(eventType, guildID string, payload []byte) {
	switch eventType {
	case "TrackStartEvent":
		var ev struct {
			Track wireTrack `json:"track"`
		}
		if json.Unmarshal(payload, &ev) == nil {
			c.handler.TrackStart(guildID, ev.Track.toModel())
		}
	case "TrackEndEvent":
		var ev struct {
			Track  wireTrack `json:"track"`
			Reason string    `json:"reason"`
		}
		if json.Unmarshal(payload, &ev) == nil {
			c.handler.TrackEnd(guildID, ev.Track.toModel(), ev.Reason)
		}
	case "TrackExceptionEvent":
		var ev struct {
			Track     wireTrack `json:"track"`
			Exception struct {
				Message  string `json:"message"`
				Severity string `json:"severity"`
			} `json:"exception"`
		}
		if json.Unmarshal(payload, &ev) == nil {
			// fault severity means the player itself is in trouble, not
			// just this track
			if ev.Exception.Severity == "fault" {
				c.handler.PlayerException(guildID, ev.Track.toModel(), ev.Exception.Message)
			} else {
				c.handler.TrackError(guildID, ev.Track.toModel(), ev.Exception.Message)
			}
		}
	case "TrackStuckEvent":
		var ev struct {
			Track       wireTrack `json:"track"`
			ThresholdMs int64     `json:"thresholdMs"`
		}
		if json.Unmarshal(payload, &ev) == nil {
			c.handler.TrackStuck(guildID, ev.Track.toModel(), ev.ThresholdMs)
		}
	case "WebSocketClosedEvent":
		c.handler.PlayerDisconnect(guildID)
	}
}

// Resolve loads tracks for a resolver-ready query
func (c *Client) Resolve(ctx context.Context, query string) (*audio.LoadResult, error) {
	endpoint := fmt.Sprintf("%s://%s/v4/loadtracks?identifier=%s",
		c.scheme(false), c.cfg.Address, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loadtracks request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loadtracks read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loadtracks returned status %d", resp.StatusCode)
	}

	return decodeLoadResult(body)
}

// Connect joins the guild's voice channel and returns its transport handle
func (c *Client) Connect(ctx context.Context, guildID, voiceChannelID string) (audio.Player, error) {
	if err := c.cfg.ConnectVoice(guildID, voiceChannelID); err != nil {
		return nil, fmt.Errorf("voice join failed: %w", err)
	}
	return &player{client: c, guildID: guildID}, nil
}

// Close shuts down the node websocket
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// HandleVoiceServerUpdate feeds gateway voice-server credentials to the node.
// The handler layer calls this from the Discord VoiceServerUpdate event.
func (c *Client) HandleVoiceServerUpdate(guildID, token, endpoint string) {
	c.voiceMu.Lock()
	vs := c.voiceEntry(guildID)
	vs.token = token
	vs.endpoint = endpoint
	complete := vs.sessionID != ""
	snapshot := *vs
	c.voiceMu.Unlock()

	if complete {
		c.pushVoiceUpdate(guildID, snapshot)
	}
}

// HandleVoiceStateUpdate feeds the bot's own voice session ID to the node
func (c *Client) HandleVoiceStateUpdate(guildID, sessionID string) {
	c.voiceMu.Lock()
	vs := c.voiceEntry(guildID)
	vs.sessionID = sessionID
	complete := vs.token != "" && vs.endpoint != ""
	snapshot := *vs
	c.voiceMu.Unlock()

	if complete {
		c.pushVoiceUpdate(guildID, snapshot)
	}
}

func (c *Client) voiceEntry(guildID string) *voiceState {
	vs, ok := c.voice[guildID]
	if !ok {
		vs = &voiceState{}
		c.voice[guildID] = vs
	}
	return vs
}

func (c *Client) pushVoiceUpdate(guildID string, vs voiceState) {
	body := map[string]any{
		"voice": map[string]string{
			"token":     vs.token,
			"endpoint":  vs.endpoint,
			"sessionId": vs.sessionID,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
	defer cancel()
	if err := c.updatePlayer(ctx, guildID, body); err != nil {
		c.logger.WithError(err).WithField("guild_id", guildID).Error("Voice update push failed")
	}
}

func (c *Client) updatePlayer(ctx context.Context, guildID string, body map[string]any) error {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()
	if sessionID == "" {
		return errors.New("node session not ready")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s://%s/v4/sessions/%s/players/%s",
		c.scheme(false), c.cfg.Address, sessionID, guildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("player update returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) destroyPlayer(ctx context.Context, guildID string) error {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()
	if sessionID == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s://%s/v4/sessions/%s/players/%s",
		c.scheme(false), c.cfg.Address, sessionID, guildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
