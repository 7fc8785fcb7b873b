package cast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionState is the secondary channel's lifecycle state. Its
// lifecycle is independent of the primary transport; TERMINATED is
// terminal for a connection attempt (a new Start begins a fresh one).
type ConnectionState string

const (
	StateDisconnected ConnectionState = "DISCONNECTED"
	StateConnecting   ConnectionState = "CONNECTING"
	StateConnected    ConnectionState = "CONNECTED"
	StateTerminated   ConnectionState = "TERMINATED"
)

// Channel is the relay's output. Satisfied by WebsocketChannel.
type Channel interface {
	Start(ctx context.Context) error
	Send(p Projection) error
	Stop()
	Terminate()
	State() ConnectionState
	States() <-chan ConnectionState
}

// ChannelConfig holds settings for the receiver connection.
type ChannelConfig struct {
	ReceiverURL  string
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadTimeout  time.Duration
	SendBuffer   int
}

// DefaultChannelConfig returns default receiver-connection settings.
func DefaultChannelConfig(receiverURL string) ChannelConfig {
	return ChannelConfig{
		ReceiverURL:  receiverURL,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		SendBuffer:   64,
	}
}

// ErrNotConnected is returned by Send outside the CONNECTED state.
var ErrNotConnected = errors.New("cast channel not connected")

// WebsocketChannel is a websocket client connection to a cast receiver.
type WebsocketChannel struct {
	config ChannelConfig

	mu    sync.Mutex
	state ConnectionState
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}

	states chan ConnectionState
}

// NewWebsocketChannel creates a channel in the DISCONNECTED state.
func NewWebsocketChannel(config ChannelConfig) *WebsocketChannel {
	return &WebsocketChannel{
		config: config,
		state:  StateDisconnected,
		states: make(chan ConnectionState, 8),
	}
}

// Start dials the receiver. Cancellation of ctx while connecting lands
// on DISCONNECTED; a permission or connection failure lands on
// TERMINATED; success lands on CONNECTED.
func (c *WebsocketChannel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return fmt.Errorf("cast channel already %s", c.state)
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.config.ReceiverURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			// User cancelled while the connection was pending.
			c.transition(StateDisconnected)
			return ctx.Err()
		}
		c.transition(StateTerminated)
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("cast permission denied: %s", resp.Status)
		}
		return fmt.Errorf("connect to cast receiver: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.send = make(chan []byte, c.config.SendBuffer)
	c.done = make(chan struct{})
	c.setStateLocked(StateConnected)
	send := c.send
	done := c.done
	c.mu.Unlock()

	connID := uuid.New().String()
	go c.writePump(connID, conn, send, done)
	go c.readLoop(connID, conn)

	log.Info().Str("connection_id", connID).Str("url", c.config.ReceiverURL).Msg("cast receiver connected")
	return nil
}

// Send serializes the projection and queues it for the receiver.
func (c *WebsocketChannel) Send(p Projection) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	send := c.send
	c.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal cast projection: %w", err)
	}
	select {
	case send <- data:
		return nil
	default:
		return errors.New("cast send buffer full")
	}
}

// Stop closes the connection gracefully; the channel lands on
// DISCONNECTED and may be started again.
func (c *WebsocketChannel) Stop() {
	c.close(StateDisconnected)
}

// Terminate tears the connection down programmatically; the channel
// lands on TERMINATED.
func (c *WebsocketChannel) Terminate() {
	c.close(StateTerminated)
}

// State returns the current lifecycle state.
func (c *WebsocketChannel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// States returns the lifecycle transition stream.
func (c *WebsocketChannel) States() <-chan ConnectionState {
	return c.states
}

func (c *WebsocketChannel) close(target ConnectionState) {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	alreadyIdle := c.state == StateDisconnected || c.state == StateTerminated
	if !alreadyIdle {
		c.setStateLocked(target)
	}
	c.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(c.config.WriteTimeout)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}
}

// writePump owns all writes to the connection: queued projections plus
// keepalive pings, each under a write deadline. done releases the pump
// when Stop or Terminate closes the connection.
func (c *WebsocketChannel) writePump(connID string, conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case message, ok := <-send:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", connID).Msg("failed to write to cast receiver")
				c.dropped(conn)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", connID).Msg("failed to ping cast receiver")
				c.dropped(conn)
				return
			}
		}
	}
}

// readLoop exists to observe the receiver closing its side.
func (c *WebsocketChannel) readLoop(connID string, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("connection_id", connID).Msg("cast receiver connection lost")
			} else {
				log.Info().Str("connection_id", connID).Msg("cast receiver closed the session")
			}
			c.dropped(conn)
			return
		}
	}
}

// dropped handles the receiver side going away: a graceful close lands
// on DISCONNECTED. Terminate/Stop clear c.conn first, so a close they
// initiated does not double-transition here.
func (c *WebsocketChannel) dropped(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	c.conn = nil
	c.setStateLocked(StateDisconnected)
}

func (c *WebsocketChannel) transition(state ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(state)
}

func (c *WebsocketChannel) setStateLocked(state ConnectionState) {
	if c.state == state {
		return
	}
	c.state = state
	select {
	case c.states <- state:
	default:
		log.Warn().Str("state", string(state)).Msg("cast state subscriber behind, dropping transition")
	}
	log.Debug().Str("state", string(state)).Msg("cast channel state changed")
}
