package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// EventType is the envelope's type discriminator.
type EventType string

const (
	EventGameSessionUpdate  EventType = "GameSessionUpdate"
	EventPlayerRosterUpdate EventType = "PlayerRosterUpdate"
	EventGameStarted        EventType = "GameStartedMessage"
	EventMatchPacketUpdate  EventType = "MatchPacketUpdate"
	EventAnswerUpdate       EventType = "AnswerUpdate"
	EventRoundUpdate        EventType = "RoundUpdate"
	EventBonusUpdate        EventType = "BonusUpdate"
	EventPlayerBuzzed       EventType = "PlayerBuzzed"
	EventProcessError       EventType = "ProcessError"
)

// Event is one decoded inbound event. Payload holds a pointer to the
// typed payload struct for the event's type.
type Event struct {
	Type    EventType
	Payload any
}

// GameSessionUpdatePayload replaces the entire aggregate.
type GameSessionUpdatePayload struct {
	GameSession game.GameSession `json:"gameSession"`
}

// PlayerRosterUpdatePayload replaces the player and team lists.
type PlayerRosterUpdatePayload struct {
	PlayerList []game.Player `json:"playerList"`
	TeamList   []game.Team   `json:"teamList"`
}

// GameStartedPayload marks the match as in game.
type GameStartedPayload struct{}

// MatchPacketUpdatePayload updates the selected packet identity.
type MatchPacketUpdatePayload struct {
	PacketID   int    `json:"packetId"`
	PacketName string `json:"packetName"`
}

// AnswerUpdatePayload carries the round after an answer judgment plus
// the authoritative round history.
type AnswerUpdatePayload struct {
	CurrentRound   *game.Round  `json:"-"`
	PreviousRounds []game.Round `json:"-"`
	Correct        bool         `json:"correct"`
	PlayerID       string       `json:"playerId"`
}

// RoundUpdatePayload carries a round transition plus history.
type RoundUpdatePayload struct {
	Round          *game.Round  `json:"-"`
	PreviousRounds []game.Round `json:"-"`
}

// BonusUpdatePayload carries bonus-phase progress plus history.
type BonusUpdatePayload struct {
	CurrentRound   *game.Round  `json:"-"`
	PreviousRounds []game.Round `json:"-"`
}

// PlayerBuzzedPayload carries the round reflecting a new buzz.
type PlayerBuzzedPayload struct {
	PlayerID string      `json:"playerId"`
	TeamID   string      `json:"teamId"`
	Round    *game.Round `json:"-"`
}

// ProcessErrorPayload is a domain error from the server. Log-only; it
// never mutates the aggregate.
type ProcessErrorPayload struct {
	Error string `json:"error"`
}

type envelope struct {
	MessageContentType EventType `json:"messageContentType"`
}

// answer/round/bonus/buzz envelopes carry rounds in the server's
// relational shape; decode them through the normalizer.
type answerUpdateWire struct {
	CurrentRound   json.RawMessage   `json:"currentRound"`
	PreviousRounds []json.RawMessage `json:"previousRounds"`
	Correct        bool              `json:"correct"`
	PlayerID       string            `json:"playerId"`
}

type roundUpdateWire struct {
	Round          json.RawMessage   `json:"round"`
	PreviousRounds []json.RawMessage `json:"previousRounds"`
}

type bonusUpdateWire struct {
	CurrentRound   json.RawMessage   `json:"currentRound"`
	PreviousRounds []json.RawMessage `json:"previousRounds"`
}

type playerBuzzedWire struct {
	PlayerID string          `json:"playerId"`
	TeamID   string          `json:"teamId"`
	Round    json.RawMessage `json:"round"`
}

// decodeEvent parses an envelope body into its typed payload.
// An unknown discriminator returns (zero Event, errUnknownType).
func decodeEvent(eventType EventType, data []byte) (Event, error) {
	switch eventType {
	case EventGameSessionUpdate:
		var payload GameSessionUpdatePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventPlayerRosterUpdate:
		var payload PlayerRosterUpdatePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventGameStarted:
		return Event{Type: eventType, Payload: &GameStartedPayload{}}, nil

	case EventMatchPacketUpdate:
		var payload MatchPacketUpdatePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventAnswerUpdate:
		var wire answerUpdateWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return Event{}, err
		}
		payload := AnswerUpdatePayload{Correct: wire.Correct, PlayerID: wire.PlayerID}
		var err error
		if payload.CurrentRound, err = NormalizeRound(wire.CurrentRound); err != nil {
			return Event{}, err
		}
		if payload.PreviousRounds, err = normalizeRounds(wire.PreviousRounds); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventRoundUpdate:
		var wire roundUpdateWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return Event{}, err
		}
		var payload RoundUpdatePayload
		var err error
		if payload.Round, err = NormalizeRound(wire.Round); err != nil {
			return Event{}, err
		}
		if payload.PreviousRounds, err = normalizeRounds(wire.PreviousRounds); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventBonusUpdate:
		var wire bonusUpdateWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return Event{}, err
		}
		var payload BonusUpdatePayload
		var err error
		if payload.CurrentRound, err = NormalizeRound(wire.CurrentRound); err != nil {
			return Event{}, err
		}
		if payload.PreviousRounds, err = normalizeRounds(wire.PreviousRounds); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventPlayerBuzzed:
		var wire playerBuzzedWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return Event{}, err
		}
		payload := PlayerBuzzedPayload{PlayerID: wire.PlayerID, TeamID: wire.TeamID}
		var err error
		if payload.Round, err = NormalizeRound(wire.Round); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	case EventProcessError:
		var payload ProcessErrorPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, err
		}
		return Event{Type: eventType, Payload: &payload}, nil

	default:
		return Event{}, fmt.Errorf("%w: %s", errUnknownType, eventType)
	}
}
