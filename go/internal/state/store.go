package state

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sockbowl/sockbowl-client/go/internal/dispatch"
	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

const snapshotBuffer = 16

// Sender publishes outbound commands. Satisfied by transport.Transport.
type Sender interface {
	Send(destination string, payload any) error
}

// Store owns the single mutable GameSession aggregate. Reducers run on
// the Run goroutine only, one per inbound event type, applied in arrival
// order; every successful fold emits one snapshot. Everything else reads
// through queries or the snapshot stream and never mutates.
type Store struct {
	participantID string
	sender        Sender

	mu      sync.RWMutex
	session *game.GameSession

	subMu sync.Mutex
	subs  []chan *game.GameSession
}

// New creates a Store for the local participant.
func New(participantID string, sender Sender) *Store {
	return &Store{
		participantID: participantID,
		sender:        sender,
	}
}

// ParticipantID returns the local participant's session id.
func (s *Store) ParticipantID() string {
	return s.participantID
}

// Subscribe returns a snapshot channel. Each snapshot is a deep copy
// taken after a reducer completed; treat it as immutable.
func (s *Store) Subscribe() <-chan *game.GameSession {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	ch := make(chan *game.GameSession, snapshotBuffer)
	s.subs = append(s.subs, ch)
	return ch
}

// Run applies decoded events until ctx is done or the stream closes.
func (s *Store) Run(ctx context.Context, events <-chan dispatch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if s.apply(event) {
				s.emit()
			}
		}
	}
}

// apply folds one event into the aggregate and reports whether the
// aggregate changed. Reducers are total: a payload that does not fit the
// current aggregate is ignored, never a panic.
func (s *Store) apply(event dispatch.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch payload := event.Payload.(type) {
	case *dispatch.GameSessionUpdatePayload:
		session := payload.GameSession
		s.session = &session
		log.Debug().Str("session_id", session.ID).Msg("full session replace")
		return true

	case *dispatch.PlayerRosterUpdatePayload:
		if s.session == nil {
			return false
		}
		s.session.PlayerList = payload.PlayerList
		s.session.TeamList = payload.TeamList
		return true

	case *dispatch.GameStartedPayload:
		if s.session == nil {
			return false
		}
		s.session.CurrentMatch.MatchState = game.MatchStateInGame
		return true

	case *dispatch.MatchPacketUpdatePayload:
		if s.session == nil {
			return false
		}
		s.session.CurrentMatch.Packet.ID = payload.PacketID
		s.session.CurrentMatch.Packet.Name = payload.PacketName
		return true

	case *dispatch.AnswerUpdatePayload:
		return s.replaceRounds(payload.CurrentRound, payload.PreviousRounds)

	case *dispatch.RoundUpdatePayload:
		return s.replaceRounds(payload.Round, payload.PreviousRounds)

	case *dispatch.BonusUpdatePayload:
		return s.replaceRounds(payload.CurrentRound, payload.PreviousRounds)

	case *dispatch.PlayerBuzzedPayload:
		if s.session == nil || payload.Round == nil {
			return false
		}
		s.session.CurrentMatch.CurrentRound = payload.Round
		return true

	case *dispatch.ProcessErrorPayload:
		log.Warn().Str("error", payload.Error).Msg("server reported a process error")
		return false

	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("no reducer for event")
		return false
	}
}

// replaceRounds installs the server-supplied current round and history.
// The server decides when a round moves to history; the client never
// infers that transition itself.
func (s *Store) replaceRounds(current *game.Round, previous []game.Round) bool {
	if s.session == nil || current == nil {
		return false
	}
	s.session.CurrentMatch.CurrentRound = current
	if previous != nil {
		s.session.CurrentMatch.PreviousRounds = previous
	}
	return true
}

// emit publishes one snapshot of the fully applied aggregate.
func (s *Store) emit() {
	s.mu.RLock()
	snapshot := s.session.Clone()
	s.mu.RUnlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- snapshot:
			continue
		default:
		}
		// Full buffer: evict the oldest queued snapshot so a slow
		// subscriber still converges on the latest aggregate.
		select {
		case <-sub:
		default:
		}
		select {
		case sub <- snapshot:
		default:
			log.Warn().Msg("snapshot subscriber buffer full, dropping snapshot")
		}
	}
}
