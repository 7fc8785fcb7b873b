package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Header names attached to every outbound command. Identity travels as
// transport metadata, never inside command bodies.
const (
	HeaderGameSessionID   = "gameSessionId"
	HeaderPlayerSessionID = "playerSessionId"
	HeaderPlayerSecret    = "playerSecret"
	HeaderAuthorization   = "Authorization"
)

// GetGameDestination is the command issued right after connecting (and
// again after every reconnect) to pull the full session state.
const GetGameDestination = "game.config.get-game"

// Credential authenticates the participant: either a shared player
// secret or a bearer token, never both.
type Credential struct {
	PlayerSecret string
	BearerToken  string
}

func (c Credential) validate() error {
	switch {
	case c.PlayerSecret == "" && c.BearerToken == "":
		return errors.New("credential required: player secret or bearer token")
	case c.PlayerSecret != "" && c.BearerToken != "":
		return errors.New("player secret and bearer token are mutually exclusive")
	}
	return nil
}

// Config holds connection settings for the primary channel.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	InboundBuffer int
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "sockbowl",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		InboundBuffer: 100,
	}
}

// Message is one inbound envelope from the server, in delivery order.
type Message struct {
	Subject string
	Data    []byte
}

// Transport owns the persistent bidirectional connection to the game
// server. It subscribes to the session-wide and participant-directed
// event subjects and exposes them as one inbound stream.
type Transport struct {
	config Config
	nc     *nats.Conn

	sessionID     string
	participantID string
	credential    Credential

	inbound chan Message
}

// New creates a Transport; no connection is made until Connect.
func New(config Config) *Transport {
	return &Transport{
		config:  config,
		inbound: make(chan Message, config.InboundBuffer),
	}
}

// Connect establishes the connection, subscribes to the session's event
// subjects and issues the initial get-game command. A failure before
// success is terminal for the caller; after success the connection
// resubscribes and resyncs on its own across reconnects.
func (t *Transport) Connect(ctx context.Context, sessionID, participantID string, credential Credential) error {
	if err := credential.validate(); err != nil {
		return err
	}
	t.sessionID = sessionID
	t.participantID = participantID
	t.credential = credential

	opts := []nats.Option{
		nats.MaxReconnects(t.config.MaxReconnects),
		nats.ReconnectWait(t.config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("game connection lost")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("game connection restored, requesting resync")
			if err := t.sendGetGame(); err != nil {
				log.Error().Err(err).Msg("failed to request state resync after reconnect")
			}
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("game connection error")
		}),
	}

	nc, err := nats.Connect(t.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("connect to game server: %w", err)
	}
	t.nc = nc

	sessionSubject := fmt.Sprintf("%s.event.%s", t.config.SubjectPrefix, sessionID)
	participantSubject := fmt.Sprintf("%s.event.%s.%s", t.config.SubjectPrefix, sessionID, participantID)

	handler := func(msg *nats.Msg) {
		select {
		case t.inbound <- Message{Subject: msg.Subject, Data: msg.Data}:
		case <-ctx.Done():
		}
	}
	for _, subject := range []string{sessionSubject, participantSubject} {
		if _, err := nc.Subscribe(subject, handler); err != nil {
			nc.Close()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}

	if err := t.sendGetGame(); err != nil {
		nc.Close()
		return fmt.Errorf("request initial state: %w", err)
	}

	log.Info().
		Str("session_id", sessionID).
		Str("participant_id", participantID).
		Str("url", nc.ConnectedUrl()).
		Msg("connected to game server")
	return nil
}

// Messages returns the single ordered inbound stream. Delivery order per
// subject is the server's publish order; no client-side reordering.
func (t *Transport) Messages() <-chan Message {
	return t.inbound
}

// Send serializes payload and publishes it to the logical destination
// with the identity headers established at Connect time.
func (t *Transport) Send(destination string, payload any) error {
	if t.nc == nil {
		return errors.New("transport not connected")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal command payload: %w", err)
	}

	msg := &nats.Msg{
		Subject: fmt.Sprintf("%s.%s", t.config.SubjectPrefix, destination),
		Header:  t.headers(),
		Data:    data,
	}
	if err := t.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish command to %s: %w", destination, err)
	}
	log.Debug().Str("destination", destination).Msg("command sent")
	return nil
}

func (t *Transport) sendGetGame() error {
	return t.Send(GetGameDestination, struct{}{})
}

func (t *Transport) headers() nats.Header {
	h := nats.Header{}
	h.Set(HeaderGameSessionID, t.sessionID)
	h.Set(HeaderPlayerSessionID, t.participantID)
	if t.credential.PlayerSecret != "" {
		h.Set(HeaderPlayerSecret, t.credential.PlayerSecret)
	} else {
		h.Set(HeaderAuthorization, "Bearer "+t.credential.BearerToken)
	}
	return h
}

// Close drains and closes the connection.
func (t *Transport) Close() {
	if t.nc != nil {
		t.nc.Close()
	}
}
