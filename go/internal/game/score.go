package game

const (
	tossupPoints    = 10
	bonusPartPoints = 10
)

// TeamScore computes a team's total across previous rounds plus the
// current round: 10 points per correct buzz by one of its players and
// 10 points per correct bonus part where the team was bonus-eligible.
// Scores are never stored on the aggregate; this is the only source.
func TeamScore(gs *GameSession, teamID string) int {
	if gs == nil {
		return 0
	}
	var team *Team
	for i := range gs.TeamList {
		if gs.TeamList[i].TeamID == teamID {
			team = &gs.TeamList[i]
			break
		}
	}
	if team == nil {
		return 0
	}

	members := make(map[string]bool, len(team.TeamPlayers))
	for _, p := range team.TeamPlayers {
		members[p.PlayerID] = true
	}

	total := 0
	forEachRound(gs, func(r *Round) {
		for _, buzz := range r.BuzzList {
			if buzz.Correct == OutcomeCorrect && members[buzz.PlayerID] {
				total += tossupPoints
			}
		}
		if r.BonusEligibleTeamID == teamID {
			total += bonusScore(r)
		}
	})
	return total
}

// PlayerScore computes an individual's tossup points across all rounds.
func PlayerScore(gs *GameSession, playerID string) int {
	if gs == nil {
		return 0
	}
	total := 0
	forEachRound(gs, func(r *Round) {
		for _, buzz := range r.BuzzList {
			if buzz.Correct == OutcomeCorrect && buzz.PlayerID == playerID {
				total += tossupPoints
			}
		}
	})
	return total
}

// bonusScore caps at the number of parts in the bonus, so a bonus is
// never worth more than its part count allows (30 for a standard bonus).
func bonusScore(r *Round) int {
	correct := 0
	for _, ans := range r.BonusPartAnswers {
		if ans.Correct {
			correct++
		}
	}
	if r.CurrentBonus != nil && correct > len(r.CurrentBonus.BonusParts) {
		correct = len(r.CurrentBonus.BonusParts)
	}
	return correct * bonusPartPoints
}

func forEachRound(gs *GameSession, fn func(*Round)) {
	for i := range gs.CurrentMatch.PreviousRounds {
		fn(&gs.CurrentMatch.PreviousRounds[i])
	}
	if gs.CurrentMatch.CurrentRound != nil {
		fn(gs.CurrentMatch.CurrentRound)
	}
}
