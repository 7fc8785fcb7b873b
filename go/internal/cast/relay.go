package cast

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// DefaultThrottle is the minimum interval between projection sends.
const DefaultThrottle = 100 * time.Millisecond

// StateSource is what the relay needs from the state store.
type StateSource interface {
	Subscribe() <-chan *game.GameSession
	Session() *game.GameSession
	IsSelfProctor() bool
}

// sendKey captures the fields a projection send is deduplicated on:
// stage, round identity, round state, and current-buzz identity and
// judgment. Snapshots that differ only elsewhere are suppressed.
type sendKey struct {
	configStage  bool
	roundNumber  int
	roundState   game.RoundState
	hasBuzz      bool
	buzzPlayerID string
	buzzOutcome  game.BuzzOutcome
}

func keyOf(gs *game.GameSession) sendKey {
	if gs == nil {
		return sendKey{configStage: true}
	}
	key := sendKey{configStage: gs.CurrentMatch.MatchState == game.MatchStateConfig}
	round := gs.CurrentMatch.CurrentRound
	if round == nil {
		return key
	}
	key.roundNumber = round.RoundNumber
	key.roundState = round.RoundState
	if round.CurrentBuzz != nil {
		key.hasBuzz = true
		key.buzzPlayerID = round.CurrentBuzz.PlayerID
		key.buzzOutcome = round.CurrentBuzz.Correct
	}
	return key
}

// Relay streams role-filtered projections of the aggregate to the
// secondary channel. It throttles and deduplicates emissions, sends a
// full snapshot immediately upon connecting, and terminates the channel
// if the local participant stops being the proctor while connected.
type Relay struct {
	source   StateSource
	channel  Channel
	clock    clockwork.Clock
	throttle time.Duration

	connected  bool
	wasProctor bool
	lastSent   sendKey
	lastSentAt time.Time
	hasSent    bool

	pending   *game.GameSession
	pendingCh <-chan time.Time
}

// NewRelay creates a relay over the given channel. A nil clock uses the
// real clock; throttle <= 0 uses the default.
func NewRelay(source StateSource, channel Channel, clock clockwork.Clock, throttle time.Duration) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Relay{
		source:   source,
		channel:  channel,
		clock:    clock,
		throttle: throttle,
	}
}

// Run consumes snapshots and channel state transitions until ctx is
// done. The channel's own lifecycle (Start/Stop/Terminate) is driven by
// the owning surface; the relay only reacts to it.
func (r *Relay) Run(ctx context.Context) {
	snapshots := r.source.Subscribe()
	states := r.channel.States()

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-states:
			r.onChannelState(state)
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			r.Observe(snapshot)
		case <-r.pendingCh:
			r.flushPending()
		}
	}
}

// onChannelState tracks connectivity. On connect the relay primes the
// proctor watch and pushes the current state so the receiver renders
// without waiting for the next game event.
func (r *Relay) onChannelState(state ConnectionState) {
	r.connected = state == StateConnected
	if !r.connected {
		r.pending = nil
		r.pendingCh = nil
		return
	}
	r.wasProctor = r.source.IsSelfProctor()
	if snapshot := r.source.Session(); snapshot != nil {
		r.send(snapshot)
	}
}

// Observe handles one aggregate snapshot.
func (r *Relay) Observe(snapshot *game.GameSession) {
	isProctor := r.source.IsSelfProctor()
	if r.wasProctor && !isProctor && r.connected {
		log.Info().Msg("local participant lost proctor role, terminating cast session")
		r.channel.Terminate()
	}
	r.wasProctor = isProctor

	if !r.connected || snapshot == nil {
		return
	}
	if key := keyOf(snapshot); r.hasSent && key == r.lastSent {
		return
	}

	elapsed := r.clock.Since(r.lastSentAt)
	if r.hasSent && elapsed < r.throttle {
		// Trailing send: coalesce to the latest snapshot.
		r.pending = snapshot
		if r.pendingCh == nil {
			r.pendingCh = r.clock.After(r.throttle - elapsed)
		}
		return
	}
	r.send(snapshot)
}

func (r *Relay) flushPending() {
	pending := r.pending
	r.pending = nil
	r.pendingCh = nil
	if pending == nil || !r.connected {
		return
	}
	// The pending snapshot may have been superseded by a direct send.
	if key := keyOf(pending); r.hasSent && key == r.lastSent {
		return
	}
	r.send(pending)
}

func (r *Relay) send(snapshot *game.GameSession) {
	projection := BuildProjection(snapshot, r.clock.Now())
	if err := r.channel.Send(projection); err != nil {
		log.Error().Err(err).Msg("failed to send cast projection")
		return
	}
	r.lastSent = keyOf(snapshot)
	r.lastSentAt = r.clock.Now()
	r.hasSent = true
	r.pending = nil
	r.pendingCh = nil
}
