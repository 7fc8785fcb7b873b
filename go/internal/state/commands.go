package state

import (
	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// Logical destinations for outbound commands. Identity headers are
// attached by the transport; bodies carry only command parameters.
const (
	destUpdatePlayerTeam   = "game.config.update-player-team"
	destSetProctor         = "game.config.set-proctor"
	destSetMatchPacket     = "game.config.set-match-packet"
	destUpdateGameSettings = "game.config.update-game-settings"
	destStartMatch         = "game.progression.start-match"
	destEndMatch           = "game.progression.end-match"
	destAnswerOutcome      = "game.answer-outcome"
	destFinishedReading    = "game.finished-reading"
	destPlayerIncomingBuzz = "game.player-incoming-buzz"
	destTimeoutRound       = "game.timeout-round"
	destAdvanceRound       = "game.advance-round"
	destBonusPartOutcome   = "game.bonus-part-outcome"
	destTimeoutBonusPart   = "game.timeout-bonus-part"
)

type updatePlayerTeamCommand struct {
	TargetPlayer string `json:"targetPlayer"`
	TargetTeam   string `json:"targetTeam"`
}

type setProctorCommand struct {
	TargetPlayer string `json:"targetPlayer"`
}

type setMatchPacketCommand struct {
	PacketID int `json:"packetId"`
}

type updateGameSettingsCommand struct {
	GameSettings game.GameSettings `json:"gameSettings"`
}

type answerOutcomeCommand struct {
	Correct bool `json:"correct"`
}

type bonusPartOutcomeCommand struct {
	PartIndex int  `json:"partIndex"`
	Correct   bool `json:"correct"`
}

type emptyCommand struct{}

// UpdateTeamSelf asks the server to move the local participant onto the
// target team.
func (s *Store) UpdateTeamSelf(targetTeam string) error {
	return s.sender.Send(destUpdatePlayerTeam, updatePlayerTeamCommand{
		TargetPlayer: s.participantID,
		TargetTeam:   targetTeam,
	})
}

// SetSelfProctor asks the server to make the local participant proctor.
func (s *Store) SetSelfProctor() error {
	return s.sender.Send(destSetProctor, setProctorCommand{TargetPlayer: s.participantID})
}

// SetProctor asks the server to make the target player proctor.
func (s *Store) SetProctor(targetPlayer string) error {
	return s.sender.Send(destSetProctor, setProctorCommand{TargetPlayer: targetPlayer})
}

// SetMatchPacket selects the question packet for the match.
func (s *Store) SetMatchPacket(packetID int) error {
	return s.sender.Send(destSetMatchPacket, setMatchPacketCommand{PacketID: packetID})
}

// UpdateGameSettings replaces the session's settings wholesale.
func (s *Store) UpdateGameSettings(settings game.GameSettings) error {
	return s.sender.Send(destUpdateGameSettings, updateGameSettingsCommand{GameSettings: settings})
}

// StartMatch asks the server to begin the match.
func (s *Store) StartMatch() error {
	return s.sender.Send(destStartMatch, emptyCommand{})
}

// EndMatch asks the server to end the match.
func (s *Store) EndMatch() error {
	return s.sender.Send(destEndMatch, emptyCommand{})
}

// SendAnswerOutcome reports the proctor's judgment of the current buzz.
func (s *Store) SendAnswerOutcome(correct bool) error {
	return s.sender.Send(destAnswerOutcome, answerOutcomeCommand{Correct: correct})
}

// SendFinishedReading signals the proctor finished reading the tossup.
func (s *Store) SendFinishedReading() error {
	return s.sender.Send(destFinishedReading, emptyCommand{})
}

// SendPlayerIncomingBuzz registers the local participant's buzz.
func (s *Store) SendPlayerIncomingBuzz() error {
	return s.sender.Send(destPlayerIncomingBuzz, emptyCommand{})
}

// SendTimeoutRound requests a tossup timeout. The server decides the
// resulting transition; the client never advances round state locally.
func (s *Store) SendTimeoutRound() error {
	return s.sender.Send(destTimeoutRound, emptyCommand{})
}

// SendAdvanceRound asks the server to move to the next round.
func (s *Store) SendAdvanceRound() error {
	return s.sender.Send(destAdvanceRound, emptyCommand{})
}

// SendBonusPartOutcome reports the judgment of one bonus part.
func (s *Store) SendBonusPartOutcome(partIndex int, correct bool) error {
	return s.sender.Send(destBonusPartOutcome, bonusPartOutcomeCommand{
		PartIndex: partIndex,
		Correct:   correct,
	})
}

// SendTimeoutBonusPart requests a timeout of the pending bonus part.
func (s *Store) SendTimeoutBonusPart() error {
	return s.sender.Send(destTimeoutBonusPart, emptyCommand{})
}
