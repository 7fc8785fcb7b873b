package state

import (
	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// Queries run synchronously against the latest applied aggregate.

// Session returns a deep copy of the current aggregate, or nil before
// the first full-state event.
func (s *Store) Session() *game.GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// MatchState returns the current match state, defaulting to CONFIG
// before the first full-state event.
func (s *Store) MatchState() game.MatchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return game.MatchStateConfig
	}
	return s.session.CurrentMatch.MatchState
}

// Proctor returns the player currently in proctor mode, or nil.
func (s *Store) Proctor() *game.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return proctorOf(s.session)
}

// IsSelfProctor reports whether the local participant is the proctor.
func (s *Store) IsSelfProctor() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proctor := proctorOf(s.session)
	return proctor != nil && proctor.PlayerID == s.participantID
}

// IsSelfGameOwner reports whether the local participant owns the game.
func (s *Store) IsSelfGameOwner() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return false
	}
	for _, p := range s.session.PlayerList {
		if p.GameOwner && p.PlayerID == s.participantID {
			return true
		}
	}
	return false
}

// IsPlayerOnAnyTeam reports whether the given player is on any team.
func (s *Store) IsPlayerOnAnyTeam(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return teamOf(s.session, playerID) != nil
}

// IsSelfOnAnyTeam reports whether the local participant is on any team.
func (s *Store) IsSelfOnAnyTeam() bool {
	return s.IsPlayerOnAnyTeam(s.participantID)
}

// IsSelfOnTeam reports whether the local participant is on the team.
func (s *Store) IsSelfOnTeam(teamID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team := teamOf(s.session, s.participantID)
	return team != nil && team.TeamID == teamID
}

// SelfPlayer returns the local participant's player record, or nil.
func (s *Store) SelfPlayer() *game.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	for i := range s.session.PlayerList {
		if s.session.PlayerList[i].PlayerID == s.participantID {
			p := s.session.PlayerList[i]
			return &p
		}
	}
	return nil
}

// SelfTeam returns the local participant's team, or nil.
func (s *Store) SelfTeam() *game.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team := teamOf(s.session, s.participantID)
	if team == nil {
		return nil
	}
	out := *team
	out.TeamPlayers = append([]game.Player(nil), team.TeamPlayers...)
	return &out
}

// HasSelfTeamBuzzed reports whether the local participant's team has an
// entry in the current round's buzz list.
func (s *Store) HasSelfTeamBuzzed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team := teamOf(s.session, s.participantID)
	if team == nil {
		return false
	}
	round := currentRoundOf(s.session)
	if round == nil {
		return false
	}
	for _, buzz := range round.BuzzList {
		if buzz.TeamID == team.TeamID {
			return true
		}
	}
	return false
}

// PlayerName resolves a player id to a display name, "" if unknown.
func (s *Store) PlayerName(playerID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	for _, p := range s.session.PlayerList {
		if p.PlayerID == playerID {
			return p.Name
		}
	}
	return ""
}

// TeamName resolves a team id to a display name, "" if unknown.
func (s *Store) TeamName(teamID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	for _, t := range s.session.TeamList {
		if t.TeamID == teamID {
			return t.TeamName
		}
	}
	return ""
}

// CurrentBonusPart returns the bonus part the round is on, or nil when
// no bonus is active or the index is out of range.
func (s *Store) CurrentBonusPart() *game.BonusPart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round := currentRoundOf(s.session)
	if round == nil || round.CurrentBonus == nil {
		return nil
	}
	idx := round.CurrentBonusPartIndex
	if idx < 0 || idx >= len(round.CurrentBonus.BonusParts) {
		return nil
	}
	part := round.CurrentBonus.BonusParts[idx]
	return &part
}

// BonusEligibleTeamName returns the display name of the team eligible
// for the current bonus, "" when no bonus is pending.
func (s *Store) BonusEligibleTeamName() string {
	s.mu.RLock()
	round := currentRoundOf(s.session)
	var teamID string
	if round != nil {
		teamID = round.BonusEligibleTeamID
	}
	s.mu.RUnlock()
	if teamID == "" {
		return ""
	}
	return s.TeamName(teamID)
}

func proctorOf(gs *game.GameSession) *game.Player {
	if gs == nil {
		return nil
	}
	for i := range gs.PlayerList {
		if gs.PlayerList[i].PlayerMode == game.PlayerModeProctor {
			p := gs.PlayerList[i]
			return &p
		}
	}
	return nil
}

func teamOf(gs *game.GameSession, playerID string) *game.Team {
	if gs == nil {
		return nil
	}
	for i := range gs.TeamList {
		for _, p := range gs.TeamList[i].TeamPlayers {
			if p.PlayerID == playerID {
				return &gs.TeamList[i]
			}
		}
	}
	return nil
}

func currentRoundOf(gs *game.GameSession) *game.Round {
	if gs == nil {
		return nil
	}
	return gs.CurrentMatch.CurrentRound
}
