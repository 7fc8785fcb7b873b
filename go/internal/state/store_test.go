package state

import (
	"testing"

	"github.com/sockbowl/sockbowl-client/go/internal/dispatch"
	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

type fakeSender struct {
	destinations []string
	payloads     []any
	err          error
}

func (f *fakeSender) Send(destination string, payload any) error {
	f.destinations = append(f.destinations, destination)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func baseSession() game.GameSession {
	return game.GameSession{
		ID:       "session-1",
		JoinCode: "ABCD",
		PlayerList: []game.Player{
			{PlayerID: "alice", Name: "Alice", PlayerMode: game.PlayerModeBuzzer, GameOwner: true},
			{PlayerID: "paula", Name: "Paula", PlayerMode: game.PlayerModeProctor},
			{PlayerID: "bree", Name: "Bree", PlayerMode: game.PlayerModeBuzzer},
		},
		TeamList: []game.Team{
			{TeamID: "team-a", TeamName: "Team A", TeamPlayers: []game.Player{{PlayerID: "alice", Name: "Alice"}}},
			{TeamID: "team-b", TeamName: "Team B", TeamPlayers: []game.Player{{PlayerID: "bree", Name: "Bree"}}},
		},
		CurrentMatch: game.Match{MatchState: game.MatchStateConfig},
	}
}

func newTestStore(t *testing.T) (*Store, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	store := New("alice", sender)
	store.apply(dispatch.Event{
		Type:    dispatch.EventGameSessionUpdate,
		Payload: &dispatch.GameSessionUpdatePayload{GameSession: baseSession()},
	})
	return store, sender
}

func TestApplyFullSessionReplace(t *testing.T) {
	store := New("alice", &fakeSender{})
	if store.Session() != nil {
		t.Fatal("session should be nil before the first full-state event")
	}

	changed := store.apply(dispatch.Event{
		Type:    dispatch.EventGameSessionUpdate,
		Payload: &dispatch.GameSessionUpdatePayload{GameSession: baseSession()},
	})
	if !changed {
		t.Fatal("full-state event should mark the aggregate changed")
	}
	session := store.Session()
	if session == nil || session.ID != "session-1" {
		t.Fatalf("Session() = %+v, want session-1", session)
	}
}

func TestApplyGameStartedOnlyChangesMatchState(t *testing.T) {
	store, _ := newTestStore(t)

	changed := store.apply(dispatch.Event{
		Type:    dispatch.EventGameStarted,
		Payload: &dispatch.GameStartedPayload{},
	})
	if !changed {
		t.Fatal("game-started event should mark the aggregate changed")
	}

	session := store.Session()
	if session.CurrentMatch.MatchState != game.MatchStateInGame {
		t.Errorf("MatchState = %s, want IN_GAME", session.CurrentMatch.MatchState)
	}
	if len(session.PlayerList) != 3 || len(session.TeamList) != 2 {
		t.Error("roster should be untouched by a game-started event")
	}
	if session.JoinCode != "ABCD" {
		t.Error("join code should be untouched by a game-started event")
	}
}

func TestApplyRosterReplace(t *testing.T) {
	store, _ := newTestStore(t)

	store.apply(dispatch.Event{
		Type: dispatch.EventPlayerRosterUpdate,
		Payload: &dispatch.PlayerRosterUpdatePayload{
			PlayerList: []game.Player{{PlayerID: "alice", Name: "Alice"}},
			TeamList:   []game.Team{{TeamID: "team-a", TeamName: "Team A"}},
		},
	})

	session := store.Session()
	if len(session.PlayerList) != 1 || len(session.TeamList) != 1 {
		t.Errorf("roster = %d players / %d teams, want 1/1",
			len(session.PlayerList), len(session.TeamList))
	}
}

func TestApplyPlayerBuzzedReplacesCurrentRound(t *testing.T) {
	store, _ := newTestStore(t)

	round := &game.Round{
		RoundNumber: 1,
		RoundState:  game.RoundStateAwaitingAnswer,
		CurrentBuzz: &game.Buzz{PlayerID: "bree", TeamID: "team-b"},
		BuzzList:    []game.Buzz{{PlayerID: "bree", TeamID: "team-b"}},
	}
	changed := store.apply(dispatch.Event{
		Type:    dispatch.EventPlayerBuzzed,
		Payload: &dispatch.PlayerBuzzedPayload{PlayerID: "bree", TeamID: "team-b", Round: round},
	})
	if !changed {
		t.Fatal("buzz event should mark the aggregate changed")
	}

	got := store.Session().CurrentMatch.CurrentRound
	if got == nil || got.CurrentBuzz == nil || got.CurrentBuzz.PlayerID != "bree" {
		t.Fatalf("CurrentRound = %+v, want bree's buzz installed", got)
	}
	if len(got.BuzzList) != 1 || got.BuzzList[0].Correct != game.OutcomeUnjudged {
		t.Errorf("BuzzList = %+v, want one unjudged buzz", got.BuzzList)
	}
}

func TestApplyRoundUpdateReplacesHistory(t *testing.T) {
	store, _ := newTestStore(t)

	store.apply(dispatch.Event{
		Type: dispatch.EventRoundUpdate,
		Payload: &dispatch.RoundUpdatePayload{
			Round:          &game.Round{RoundNumber: 2, RoundState: game.RoundStateProctorReading},
			PreviousRounds: []game.Round{{RoundNumber: 1, RoundState: game.RoundStateCompleted}},
		},
	})

	match := store.Session().CurrentMatch
	if match.CurrentRound == nil || match.CurrentRound.RoundNumber != 2 {
		t.Fatalf("CurrentRound = %+v, want round 2", match.CurrentRound)
	}
	if len(match.PreviousRounds) != 1 || match.PreviousRounds[0].RoundNumber != 1 {
		t.Errorf("PreviousRounds = %+v, want completed round 1", match.PreviousRounds)
	}

	// History without a round payload keeps the previous history.
	store.apply(dispatch.Event{
		Type: dispatch.EventAnswerUpdate,
		Payload: &dispatch.AnswerUpdatePayload{
			CurrentRound: &game.Round{RoundNumber: 2, RoundState: game.RoundStateAwaitingBuzz},
		},
	})
	match = store.Session().CurrentMatch
	if len(match.PreviousRounds) != 1 {
		t.Errorf("PreviousRounds len = %d, want history preserved", len(match.PreviousRounds))
	}
	if match.CurrentRound.RoundState != game.RoundStateAwaitingBuzz {
		t.Errorf("RoundState = %s, want AWAITING_BUZZ", match.CurrentRound.RoundState)
	}
}

func TestApplyBeforeFullStateIsIgnored(t *testing.T) {
	store := New("alice", &fakeSender{})

	events := []dispatch.Event{
		{Type: dispatch.EventGameStarted, Payload: &dispatch.GameStartedPayload{}},
		{Type: dispatch.EventPlayerRosterUpdate, Payload: &dispatch.PlayerRosterUpdatePayload{}},
		{Type: dispatch.EventMatchPacketUpdate, Payload: &dispatch.MatchPacketUpdatePayload{PacketID: 1}},
		{Type: dispatch.EventPlayerBuzzed, Payload: &dispatch.PlayerBuzzedPayload{Round: &game.Round{}}},
	}
	for _, event := range events {
		if store.apply(event) {
			t.Errorf("apply(%s) changed a nil aggregate", event.Type)
		}
	}
	if store.Session() != nil {
		t.Fatal("session should still be nil")
	}
}

func TestApplyProcessErrorDoesNotMutate(t *testing.T) {
	store, _ := newTestStore(t)
	before := store.Session()

	if store.apply(dispatch.Event{
		Type:    dispatch.EventProcessError,
		Payload: &dispatch.ProcessErrorPayload{Error: "not your turn"},
	}) {
		t.Fatal("process error should not mark the aggregate changed")
	}
	after := store.Session()
	if after.ID != before.ID || after.CurrentMatch.MatchState != before.CurrentMatch.MatchState {
		t.Error("process error mutated the aggregate")
	}
}

func TestQueries(t *testing.T) {
	store, _ := newTestStore(t)

	if store.MatchState() != game.MatchStateConfig {
		t.Errorf("MatchState = %s, want CONFIG", store.MatchState())
	}
	if store.IsSelfProctor() {
		t.Error("alice is not the proctor")
	}
	if proctor := store.Proctor(); proctor == nil || proctor.PlayerID != "paula" {
		t.Errorf("Proctor = %+v, want paula", proctor)
	}
	if !store.IsSelfGameOwner() {
		t.Error("alice owns the game")
	}
	if !store.IsSelfOnTeam("team-a") || store.IsSelfOnTeam("team-b") {
		t.Error("alice is on team-a only")
	}
	if name := store.PlayerName("bree"); name != "Bree" {
		t.Errorf("PlayerName(bree) = %q, want Bree", name)
	}
	if name := store.TeamName("team-b"); name != "Team B" {
		t.Errorf("TeamName(team-b) = %q, want Team B", name)
	}
	if name := store.TeamName("nope"); name != "" {
		t.Errorf("TeamName(nope) = %q, want empty", name)
	}
}

func TestHasSelfTeamBuzzed(t *testing.T) {
	store, _ := newTestStore(t)

	if store.HasSelfTeamBuzzed() {
		t.Error("no round yet, team cannot have buzzed")
	}

	store.apply(dispatch.Event{
		Type: dispatch.EventRoundUpdate,
		Payload: &dispatch.RoundUpdatePayload{
			Round: &game.Round{
				RoundNumber: 1,
				BuzzList:    []game.Buzz{{PlayerID: "bree", TeamID: "team-b", Correct: game.OutcomeIncorrect}},
			},
		},
	})
	if store.HasSelfTeamBuzzed() {
		t.Error("only team-b has buzzed")
	}

	store.apply(dispatch.Event{
		Type: dispatch.EventPlayerBuzzed,
		Payload: &dispatch.PlayerBuzzedPayload{
			PlayerID: "alice",
			TeamID:   "team-a",
			Round: &game.Round{
				RoundNumber: 1,
				BuzzList: []game.Buzz{
					{PlayerID: "bree", TeamID: "team-b", Correct: game.OutcomeIncorrect},
					{PlayerID: "alice", TeamID: "team-a"},
				},
			},
		},
	})
	if !store.HasSelfTeamBuzzed() {
		t.Error("team-a has buzzed now")
	}
}

func TestCurrentBonusPart(t *testing.T) {
	store, _ := newTestStore(t)

	store.apply(dispatch.Event{
		Type: dispatch.EventBonusUpdate,
		Payload: &dispatch.BonusUpdatePayload{
			CurrentRound: &game.Round{
				RoundNumber: 1,
				RoundState:  game.RoundStateBonusAwaitingAnswer,
				CurrentBonus: &game.Bonus{
					BonusParts: []game.BonusPart{
						{Number: 1, Question: "first part"},
						{Number: 2, Question: "second part"},
					},
				},
				CurrentBonusPartIndex: 1,
				BonusEligibleTeamID:   "team-b",
			},
		},
	})

	part := store.CurrentBonusPart()
	if part == nil || part.Question != "second part" {
		t.Fatalf("CurrentBonusPart = %+v, want second part", part)
	}
	if name := store.BonusEligibleTeamName(); name != "Team B" {
		t.Errorf("BonusEligibleTeamName = %q, want Team B", name)
	}
}

func TestCommands(t *testing.T) {
	store, sender := newTestStore(t)

	if err := store.SendPlayerIncomingBuzz(); err != nil {
		t.Fatalf("SendPlayerIncomingBuzz error: %v", err)
	}
	if err := store.SendAnswerOutcome(true); err != nil {
		t.Fatalf("SendAnswerOutcome error: %v", err)
	}
	if err := store.UpdateTeamSelf("team-b"); err != nil {
		t.Fatalf("UpdateTeamSelf error: %v", err)
	}
	if err := store.SendBonusPartOutcome(1, false); err != nil {
		t.Fatalf("SendBonusPartOutcome error: %v", err)
	}

	want := []string{
		"game.player-incoming-buzz",
		"game.answer-outcome",
		"game.config.update-player-team",
		"game.bonus-part-outcome",
	}
	if len(sender.destinations) != len(want) {
		t.Fatalf("sent %d commands, want %d", len(sender.destinations), len(want))
	}
	for i, dest := range want {
		if sender.destinations[i] != dest {
			t.Errorf("destination %d = %s, want %s", i, sender.destinations[i], dest)
		}
	}

	team := sender.payloads[2].(updatePlayerTeamCommand)
	if team.TargetPlayer != "alice" || team.TargetTeam != "team-b" {
		t.Errorf("update-player-team payload = %+v, want alice onto team-b", team)
	}
	bonus := sender.payloads[3].(bonusPartOutcomeCommand)
	if bonus.PartIndex != 1 || bonus.Correct {
		t.Errorf("bonus-part-outcome payload = %+v, want part 1 incorrect", bonus)
	}
}

func TestSlowSubscriberConvergesOnLatest(t *testing.T) {
	store, _ := newTestStore(t)
	snapshots := store.Subscribe()

	// Overflow the subscriber buffer without draining it; old queued
	// snapshots are evicted, never the newest.
	n := snapshotBuffer + 8
	for i := 1; i <= n; i++ {
		store.apply(dispatch.Event{
			Type:    dispatch.EventMatchPacketUpdate,
			Payload: &dispatch.MatchPacketUpdatePayload{PacketID: i},
		})
		store.emit()
	}

	var last *game.GameSession
drain:
	for {
		select {
		case snapshot := <-snapshots:
			last = snapshot
		default:
			break drain
		}
	}
	if last == nil {
		t.Fatal("no snapshots delivered")
	}
	if got := last.CurrentMatch.Packet.ID; got != n {
		t.Errorf("latest delivered packet id = %d, want %d", got, n)
	}
}

func TestSnapshotsAreIsolatedCopies(t *testing.T) {
	store, _ := newTestStore(t)
	snapshots := store.Subscribe()

	store.apply(dispatch.Event{Type: dispatch.EventGameStarted, Payload: &dispatch.GameStartedPayload{}})
	store.emit()

	snapshot := <-snapshots
	snapshot.PlayerList[0].Name = "mutated"

	if store.Session().PlayerList[0].Name != "Alice" {
		t.Error("snapshot shares player list with the live aggregate")
	}
}
