package game

// MatchState tracks where a match is in its lifecycle.
type MatchState string

const (
	MatchStateConfig    MatchState = "CONFIG"
	MatchStateInGame    MatchState = "IN_GAME"
	MatchStateCompleted MatchState = "COMPLETED"
)

// RoundState is the server-driven round state machine. The client never
// advances this locally; timers only request transitions via commands.
type RoundState string

const (
	RoundStateProctorReading      RoundState = "PROCTOR_READING"
	RoundStateAwaitingBuzz        RoundState = "AWAITING_BUZZ"
	RoundStateAwaitingAnswer      RoundState = "AWAITING_ANSWER"
	RoundStateBonusAwaitingAnswer RoundState = "BONUS_AWAITING_ANSWER"
	RoundStateCompleted           RoundState = "COMPLETED"
)

// PlayerMode is the role a participant plays in the session.
type PlayerMode string

const (
	PlayerModeBuzzer    PlayerMode = "BUZZER"
	PlayerModeProctor   PlayerMode = "PROCTOR"
	PlayerModeSpectator PlayerMode = "SPECTATOR"
	PlayerModeDisplay   PlayerMode = "DISPLAY"
)

// PlayerStatus reflects a participant's primary-connection status.
type PlayerStatus string

const (
	PlayerStatusConnected    PlayerStatus = "CONNECTED"
	PlayerStatusDisconnected PlayerStatus = "DISCONNECTED"
)

// ProctorType selects how a session is proctored.
type ProctorType string

const (
	ProctorTypeInPerson ProctorType = "IN_PERSON_PROCTOR"
	ProctorTypeOnline   ProctorType = "ONLINE_PROCTOR"
	ProctorTypeNone     ProctorType = "NO_PROCTOR"
)

// GameMode selects the rule set for a session.
type GameMode string

const GameModeQuizBowlClassic GameMode = "QUIZ_BOWL_CLASSIC"

// TimerSettings configures the advisory client-side countdowns.
type TimerSettings struct {
	TossupSeconds int  `json:"tossupSeconds"`
	BonusSeconds  int  `json:"bonusSeconds"`
	AutoTimer     bool `json:"autoTimer"`
}

// GameSettings is replaced wholesale on a settings-update event.
type GameSettings struct {
	ProctorType    ProctorType   `json:"proctorType"`
	GameMode       GameMode      `json:"gameMode"`
	BonusesEnabled bool          `json:"bonusesEnabled"`
	TimerSettings  TimerSettings `json:"timerSettings"`
}

// Packet identifies the question packet selected for a match.
type Packet struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BonusPart is one part of a multi-part bonus, ordered by Number.
type BonusPart struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Bonus is the multi-part follow-up unlocked by a correct tossup buzz.
type Bonus struct {
	ID          int         `json:"id"`
	Preamble    string      `json:"preamble"`
	BonusParts  []BonusPart `json:"bonusParts"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
}

// BonusPartAnswer records the proctor's judgment of one bonus part.
type BonusPartAnswer struct {
	PartIndex int  `json:"partIndex"`
	Correct   bool `json:"correct"`
}

// Buzz records a player signalling to answer, with eventual judgment.
type Buzz struct {
	PlayerID string      `json:"playerId"`
	TeamID   string      `json:"teamId"`
	Correct  BuzzOutcome `json:"correct"`
}

// Round holds the full state of one tossup (and its bonus, if any).
type Round struct {
	RoundState             RoundState        `json:"roundState"`
	RoundNumber            int               `json:"roundNumber"`
	Category               string            `json:"category"`
	Subcategory            string            `json:"subcategory"`
	Question               string            `json:"question"`
	Answer                 string            `json:"answer"`
	CurrentBuzz            *Buzz             `json:"currentBuzz"`
	BuzzList               []Buzz            `json:"buzzList"`
	ProctorFinishedReading bool              `json:"proctorFinishedReading"`
	CurrentBonus           *Bonus            `json:"currentBonus"`
	CurrentBonusPartIndex  int               `json:"currentBonusPartIndex"`
	BonusEligibleTeamID    string            `json:"bonusEligibleTeamId"`
	BonusPartAnswers       []BonusPartAnswer `json:"bonusPartAnswers"`

	// Server-reported countdowns for roles that do not run local timers.
	TossupRemainingSeconds *int `json:"tossupRemainingSeconds,omitempty"`
	BonusRemainingSeconds  *int `json:"bonusRemainingSeconds,omitempty"`
}

// Match is the current match within a session. PreviousRounds is
// append-only and owned by the server; reducers replace it wholesale.
type Match struct {
	MatchState     MatchState `json:"matchState"`
	Packet         Packet     `json:"packet"`
	CurrentRound   *Round     `json:"currentRound"`
	PreviousRounds []Round    `json:"previousRounds"`
}

// Player is one participant in the session.
type Player struct {
	PlayerID     string       `json:"playerId"`
	PlayerSecret string       `json:"playerSecret"`
	Name         string       `json:"name"`
	PlayerMode   PlayerMode   `json:"playerMode"`
	PlayerStatus PlayerStatus `json:"playerStatus"`
	GameOwner    bool         `json:"gameOwner"`
}

// Team groups players; member order is meaningful for display.
type Team struct {
	TeamID      string   `json:"teamId"`
	TeamName    string   `json:"teamName"`
	TeamPlayers []Player `json:"teamPlayers"`
}

// GameSession is the root aggregate. Exactly one instance is live per
// client session; only the state store's reducers mutate it.
type GameSession struct {
	ID           string       `json:"id"`
	JoinCode     string       `json:"joinCode"`
	GameSettings GameSettings `json:"gameSettings"`
	PlayerList   []Player     `json:"playerList"`
	TeamList     []Team       `json:"teamList"`
	CurrentMatch Match        `json:"currentMatch"`
	ProctorID    string       `json:"proctorId"`
}

// Clone returns a deep copy of the session. Snapshot subscribers receive
// clones so no reader can observe a reducer mid-mutation.
func (gs *GameSession) Clone() *GameSession {
	if gs == nil {
		return nil
	}
	out := *gs
	out.PlayerList = append([]Player(nil), gs.PlayerList...)
	out.TeamList = make([]Team, len(gs.TeamList))
	for i, team := range gs.TeamList {
		out.TeamList[i] = team
		out.TeamList[i].TeamPlayers = append([]Player(nil), team.TeamPlayers...)
	}
	out.CurrentMatch = gs.CurrentMatch.clone()
	return &out
}

func (m Match) clone() Match {
	out := m
	out.CurrentRound = m.CurrentRound.Clone()
	out.PreviousRounds = make([]Round, len(m.PreviousRounds))
	for i, r := range m.PreviousRounds {
		out.PreviousRounds[i] = *r.Clone()
	}
	return out
}

// Clone deep-copies a round.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	out := *r
	if r.CurrentBuzz != nil {
		b := *r.CurrentBuzz
		out.CurrentBuzz = &b
	}
	out.BuzzList = append([]Buzz(nil), r.BuzzList...)
	out.BonusPartAnswers = append([]BonusPartAnswer(nil), r.BonusPartAnswers...)
	if r.CurrentBonus != nil {
		bonus := *r.CurrentBonus
		bonus.BonusParts = append([]BonusPart(nil), r.CurrentBonus.BonusParts...)
		out.CurrentBonus = &bonus
	}
	if r.TossupRemainingSeconds != nil {
		v := *r.TossupRemainingSeconds
		out.TossupRemainingSeconds = &v
	}
	if r.BonusRemainingSeconds != nil {
		v := *r.BonusRemainingSeconds
		out.BonusRemainingSeconds = &v
	}
	return &out
}
