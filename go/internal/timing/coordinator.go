package timing

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// purpose distinguishes the two independent countdowns a role runs.
type purpose string

const (
	purposeTossup purpose = "tossup"
	purposeBonus  purpose = "bonus"
)

const (
	defaultTossupSeconds = 10
	defaultBonusSeconds  = 10
)

// Commander is the command surface the coordinator emits through.
// Satisfied by state.Store.
type Commander interface {
	SendTimeoutRound() error
	SendTimeoutBonusPart() error
}

// Role is the surface a coordinator instance serves.
type Role string

const (
	RoleProctor Role = "PROCTOR"
	RoleBuzzer  Role = "BUZZER"
	RoleDisplay Role = "DISPLAY"
)

// Options configures a coordinator instance.
type Options struct {
	Role Role

	// EmitTimeouts controls whether expiry sends timeout commands.
	// Only the proctor surface requests server transitions; other
	// surfaces run countdowns for display only.
	EmitTimeouts bool

	// UseServerTiming disables local countdowns entirely; the surface
	// reads the server-reported remaining seconds off the round.
	UseServerTiming bool

	Clock clockwork.Clock
}

// Coordinator watches aggregate snapshots and drives the advisory
// tossup and bonus countdowns for one role surface. Starting a
// countdown always cancels the previous one for the same purpose, so
// rapid re-entry never double-counts; the two purposes never interfere.
type Coordinator struct {
	opts     Options
	commands Commander
	clock    clockwork.Clock

	mu        sync.Mutex
	timers    map[purpose]*countdown
	deadlines map[purpose]time.Time
}

// countdown is one live timer plus the signal that releases its watcher
// goroutine when the countdown is stopped or replaced before firing.
type countdown struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// New creates a coordinator for one role surface.
func New(commands Commander, opts Options) *Coordinator {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Coordinator{
		opts:      opts,
		commands:  commands,
		clock:     clock,
		timers:    make(map[purpose]*countdown),
		deadlines: make(map[purpose]time.Time),
	}
}

// Run consumes snapshots until ctx is done or the stream closes. All
// countdowns stop on teardown.
func (c *Coordinator) Run(ctx context.Context, snapshots <-chan *game.GameSession) {
	defer c.StopAll()
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			c.Observe(ctx, snapshot)
		}
	}
}

// Observe inspects one snapshot and starts or stops countdowns to match
// the round state.
func (c *Coordinator) Observe(ctx context.Context, snapshot *game.GameSession) {
	if snapshot == nil || c.opts.UseServerTiming {
		return
	}

	round := snapshot.CurrentMatch.CurrentRound
	settings := snapshot.GameSettings.TimerSettings
	auto := settings.AutoTimer

	if round != nil && auto && round.RoundState == game.RoundStateAwaitingBuzz {
		c.start(ctx, purposeTossup, secondsOrDefault(settings.TossupSeconds, defaultTossupSeconds))
	} else {
		c.stop(purposeTossup)
	}

	if round != nil && auto && round.RoundState == game.RoundStateBonusAwaitingAnswer {
		c.start(ctx, purposeBonus, secondsOrDefault(settings.BonusSeconds, defaultBonusSeconds))
	} else {
		c.stop(purposeBonus)
	}
}

// TossupRemaining returns the seconds left on the tossup countdown, or
// the server-reported value for surfaces that do not time locally.
func (c *Coordinator) TossupRemaining(snapshot *game.GameSession) int {
	if c.opts.UseServerTiming {
		if round := currentRound(snapshot); round != nil && round.TossupRemainingSeconds != nil {
			return *round.TossupRemainingSeconds
		}
		return 0
	}
	return c.localRemaining(purposeTossup)
}

// BonusRemaining returns the seconds left on the bonus countdown, or
// the server-reported value for surfaces that do not time locally.
func (c *Coordinator) BonusRemaining(snapshot *game.GameSession) int {
	if c.opts.UseServerTiming {
		if round := currentRound(snapshot); round != nil && round.BonusRemainingSeconds != nil {
			return *round.BonusRemainingSeconds
		}
		return 0
	}
	return c.localRemaining(purposeBonus)
}

// StopAll cancels both countdowns.
func (c *Coordinator) StopAll() {
	c.stop(purposeTossup)
	c.stop(purposeBonus)
}

// start replaces any existing countdown for the purpose with a fresh
// one. The replaced timer is stopped and drained and its watcher
// released, so there is never more than one active countdown, or one
// watcher goroutine, per purpose.
func (c *Coordinator) start(ctx context.Context, p purpose, d time.Duration) {
	cd := &countdown{
		timer:  c.clock.NewTimer(d),
		cancel: make(chan struct{}),
	}

	c.mu.Lock()
	if existing, ok := c.timers[p]; ok {
		stopAndDrainTimer(existing.timer)
		close(existing.cancel)
	}
	c.timers[p] = cd
	c.deadlines[p] = c.clock.Now().Add(d)
	c.mu.Unlock()

	go func() {
		select {
		case <-cd.timer.Chan():
			if !c.clearIfCurrent(p, cd) {
				// Replaced while firing; the newer countdown owns
				// this purpose now.
				return
			}
			c.expire(p)
		case <-cd.cancel:
			// Stopped or replaced; the other side cleaned up.
		case <-ctx.Done():
			stopAndDrainTimer(cd.timer)
			c.clearIfCurrent(p, cd)
		}
	}()

	log.Debug().
		Str("role", string(c.opts.Role)).
		Str("purpose", string(p)).
		Dur("duration", d).
		Msg("countdown started")
}

func (c *Coordinator) stop(p purpose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cd, ok := c.timers[p]; ok {
		stopAndDrainTimer(cd.timer)
		close(cd.cancel)
		delete(c.timers, p)
		delete(c.deadlines, p)
		log.Debug().
			Str("role", string(c.opts.Role)).
			Str("purpose", string(p)).
			Msg("countdown stopped")
	}
}

// clearIfCurrent removes the countdown if it still owns the purpose and
// reports whether it did.
func (c *Coordinator) clearIfCurrent(p purpose, cd *countdown) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.timers[p]; ok && current == cd {
		delete(c.timers, p)
		delete(c.deadlines, p)
		return true
	}
	return false
}

// expire emits the timeout command for the purpose. The client never
// advances round state locally; it only requests the server to.
func (c *Coordinator) expire(p purpose) {
	log.Info().
		Str("role", string(c.opts.Role)).
		Str("purpose", string(p)).
		Msg("countdown expired")
	if !c.opts.EmitTimeouts {
		return
	}

	var err error
	switch p {
	case purposeTossup:
		err = c.commands.SendTimeoutRound()
	case purposeBonus:
		err = c.commands.SendTimeoutBonusPart()
	}
	if err != nil {
		log.Error().Err(err).Str("purpose", string(p)).Msg("failed to send timeout command")
	}
}

func (c *Coordinator) localRemaining(p purpose) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline, ok := c.deadlines[p]
	if !ok {
		return 0
	}
	remaining := int(deadline.Sub(c.clock.Now()).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// stopAndDrainTimer stops a timer and drains its channel so a fire that
// raced the stop cannot be observed later.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

func secondsOrDefault(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

func currentRound(gs *game.GameSession) *game.Round {
	if gs == nil {
		return nil
	}
	return gs.CurrentMatch.CurrentRound
}
