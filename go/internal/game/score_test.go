package game

import "testing"

func twoTeamSession() *GameSession {
	return &GameSession{
		ID: "session-1",
		TeamList: []Team{
			{
				TeamID:   "team-a",
				TeamName: "Team A",
				TeamPlayers: []Player{
					{PlayerID: "alice", Name: "Alice"},
					{PlayerID: "amir", Name: "Amir"},
				},
			},
			{
				TeamID:   "team-b",
				TeamName: "Team B",
				TeamPlayers: []Player{
					{PlayerID: "bree", Name: "Bree"},
				},
			},
		},
	}
}

func TestTeamScoreTossups(t *testing.T) {
	gs := twoTeamSession()
	gs.CurrentMatch.PreviousRounds = []Round{
		{
			RoundNumber: 1,
			BuzzList: []Buzz{
				{PlayerID: "bree", TeamID: "team-b", Correct: OutcomeIncorrect},
				{PlayerID: "alice", TeamID: "team-a", Correct: OutcomeCorrect},
			},
		},
		{
			RoundNumber: 2,
			BuzzList: []Buzz{
				{PlayerID: "amir", TeamID: "team-a", Correct: OutcomeCorrect},
			},
		},
	}
	gs.CurrentMatch.CurrentRound = &Round{
		RoundNumber: 3,
		BuzzList: []Buzz{
			{PlayerID: "bree", TeamID: "team-b", Correct: OutcomeCorrect},
			{PlayerID: "alice", TeamID: "team-a", Correct: OutcomeUnjudged},
		},
	}

	if got := TeamScore(gs, "team-a"); got != 20 {
		t.Errorf("TeamScore(team-a) = %d, want 20", got)
	}
	if got := TeamScore(gs, "team-b"); got != 10 {
		t.Errorf("TeamScore(team-b) = %d, want 10", got)
	}
	if got := TeamScore(gs, "no-such-team"); got != 0 {
		t.Errorf("TeamScore(no-such-team) = %d, want 0", got)
	}
}

func TestTeamScoreBonuses(t *testing.T) {
	gs := twoTeamSession()
	gs.CurrentMatch.PreviousRounds = []Round{
		{
			RoundNumber: 1,
			BuzzList:    []Buzz{{PlayerID: "alice", TeamID: "team-a", Correct: OutcomeCorrect}},
			CurrentBonus: &Bonus{
				ID: 7,
				BonusParts: []BonusPart{
					{Number: 1}, {Number: 2}, {Number: 3},
				},
			},
			BonusEligibleTeamID: "team-a",
			BonusPartAnswers: []BonusPartAnswer{
				{PartIndex: 0, Correct: true},
				{PartIndex: 1, Correct: false},
				{PartIndex: 2, Correct: true},
			},
		},
	}

	// 10 for the tossup plus 20 for two correct bonus parts.
	if got := TeamScore(gs, "team-a"); got != 30 {
		t.Errorf("TeamScore(team-a) = %d, want 30", got)
	}
	if got := TeamScore(gs, "team-b"); got != 0 {
		t.Errorf("TeamScore(team-b) = %d, want 0", got)
	}
}

func TestTeamScoreBonusCappedAtPartCount(t *testing.T) {
	gs := twoTeamSession()
	gs.CurrentMatch.PreviousRounds = []Round{
		{
			RoundNumber:         1,
			CurrentBonus:        &Bonus{BonusParts: []BonusPart{{Number: 1}, {Number: 2}}},
			BonusEligibleTeamID: "team-b",
			BonusPartAnswers: []BonusPartAnswer{
				{PartIndex: 0, Correct: true},
				{PartIndex: 1, Correct: true},
				{PartIndex: 2, Correct: true},
			},
		},
	}

	if got := TeamScore(gs, "team-b"); got != 20 {
		t.Errorf("TeamScore(team-b) = %d, want 20", got)
	}
}

func TestPlayerScore(t *testing.T) {
	gs := twoTeamSession()
	gs.CurrentMatch.PreviousRounds = []Round{
		{BuzzList: []Buzz{{PlayerID: "alice", Correct: OutcomeCorrect}}},
		{BuzzList: []Buzz{{PlayerID: "alice", Correct: OutcomeIncorrect}}},
	}
	gs.CurrentMatch.CurrentRound = &Round{
		BuzzList: []Buzz{{PlayerID: "alice", Correct: OutcomeCorrect}},
	}

	if got := PlayerScore(gs, "alice"); got != 20 {
		t.Errorf("PlayerScore(alice) = %d, want 20", got)
	}
	if got := PlayerScore(gs, "bree"); got != 0 {
		t.Errorf("PlayerScore(bree) = %d, want 0", got)
	}
}

func TestScoreNilSession(t *testing.T) {
	if got := TeamScore(nil, "team-a"); got != 0 {
		t.Errorf("TeamScore(nil) = %d, want 0", got)
	}
	if got := PlayerScore(nil, "alice"); got != 0 {
		t.Errorf("PlayerScore(nil) = %d, want 0", got)
	}
}
