package cast

import (
	"time"

	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// MessageTypeGameStateUpdate tags every projection sent to a receiver.
const MessageTypeGameStateUpdate = "GAME_STATE_UPDATE"

const noProctorPlaceholder = "No proctor yet"

// TeamRoster is one team's lineup for the config-stage view.
type TeamRoster struct {
	TeamID      string   `json:"teamId"`
	TeamName    string   `json:"teamName"`
	PlayerNames []string `json:"playerNames"`
}

// TeamScore is one scoreboard entry, computed, never stored.
type TeamScore struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Score    int    `json:"score"`
}

// BuzzInfo summarizes the current buzz for the receiver.
type BuzzInfo struct {
	PlayerName string           `json:"playerName"`
	TeamName   string           `json:"teamName"`
	TeamID     string           `json:"teamId"`
	Correct    game.BuzzOutcome `json:"correct"`
}

// Projection is the minimal, visibility-filtered view of the session a
// receiver renders. Sent as whole-document replacements; the timestamp
// lets the receiver discard stale out-of-order messages.
type Projection struct {
	MessageType   string `json:"messageType"`
	Timestamp     int64  `json:"timestamp"`
	IsConfigStage bool   `json:"isConfigStage"`

	// Config stage.
	JoinCode    string       `json:"joinCode,omitempty"`
	TeamRosters []TeamRoster `json:"teamRosters,omitempty"`
	PacketName  string       `json:"packetName,omitempty"`
	GameMode    string       `json:"gameMode,omitempty"`
	ProctorName string       `json:"proctorName,omitempty"`

	// Active match.
	RoundNumber     int             `json:"roundNumber"`
	Category        string          `json:"category"`
	Subcategory     string          `json:"subcategory"`
	RoundState      game.RoundState `json:"roundState"`
	QuestionVisible bool            `json:"questionVisible"`
	QuestionText    string          `json:"questionText"`
	AnswerVisible   bool            `json:"answerVisible"`
	AnswerText      string          `json:"answerText"`
	CurrentBuzz     *BuzzInfo       `json:"currentBuzz"`
	TeamScores      []TeamScore     `json:"teamScores"`
}

// BuildProjection derives the receiver view from one session snapshot.
// Question text is gated until the proctor finishes reading; answer text
// is gated until the round completes.
func BuildProjection(gs *game.GameSession, now time.Time) Projection {
	p := Projection{
		MessageType: MessageTypeGameStateUpdate,
		Timestamp:   now.UnixMilli(),
		RoundState:  game.RoundStateProctorReading,
	}
	if gs == nil {
		p.IsConfigStage = true
		return p
	}

	if gs.CurrentMatch.MatchState == game.MatchStateConfig {
		p.IsConfigStage = true
		p.JoinCode = gs.JoinCode
		p.TeamRosters = buildRosters(gs)
		p.PacketName = gs.CurrentMatch.Packet.Name
		p.GameMode = string(gs.GameSettings.GameMode)
		p.ProctorName = proctorName(gs)
		return p
	}

	round := gs.CurrentMatch.CurrentRound
	if round == nil {
		return p
	}

	p.RoundNumber = round.RoundNumber
	p.Category = round.Category
	p.Subcategory = round.Subcategory
	p.RoundState = round.RoundState
	p.QuestionVisible = round.RoundState != game.RoundStateProctorReading
	if p.QuestionVisible {
		p.QuestionText = round.Question
	}
	p.AnswerVisible = round.RoundState == game.RoundStateCompleted
	if p.AnswerVisible {
		p.AnswerText = round.Answer
	}
	p.CurrentBuzz = buildBuzzInfo(gs, round.CurrentBuzz)
	p.TeamScores = buildScores(gs)
	return p
}

func buildRosters(gs *game.GameSession) []TeamRoster {
	rosters := make([]TeamRoster, 0, len(gs.TeamList))
	for _, team := range gs.TeamList {
		names := make([]string, 0, len(team.TeamPlayers))
		for _, p := range team.TeamPlayers {
			names = append(names, p.Name)
		}
		rosters = append(rosters, TeamRoster{
			TeamID:      team.TeamID,
			TeamName:    team.TeamName,
			PlayerNames: names,
		})
	}
	return rosters
}

func buildScores(gs *game.GameSession) []TeamScore {
	scores := make([]TeamScore, 0, len(gs.TeamList))
	for _, team := range gs.TeamList {
		scores = append(scores, TeamScore{
			TeamID:   team.TeamID,
			TeamName: team.TeamName,
			Score:    game.TeamScore(gs, team.TeamID),
		})
	}
	return scores
}

func buildBuzzInfo(gs *game.GameSession, buzz *game.Buzz) *BuzzInfo {
	if buzz == nil {
		return nil
	}
	return &BuzzInfo{
		PlayerName: playerName(gs, buzz.PlayerID),
		TeamName:   teamName(gs, buzz.TeamID),
		TeamID:     buzz.TeamID,
		Correct:    buzz.Correct,
	}
}

func proctorName(gs *game.GameSession) string {
	for _, p := range gs.PlayerList {
		if p.PlayerMode == game.PlayerModeProctor {
			return p.Name
		}
	}
	return noProctorPlaceholder
}

func playerName(gs *game.GameSession, playerID string) string {
	for _, p := range gs.PlayerList {
		if p.PlayerID == playerID {
			return p.Name
		}
	}
	return "Unknown"
}

func teamName(gs *game.GameSession, teamID string) string {
	for _, t := range gs.TeamList {
		if t.TeamID == teamID {
			return t.TeamName
		}
	}
	return "Unknown"
}
