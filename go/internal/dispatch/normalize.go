package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sockbowl/sockbowl-client/go/internal/game"
)

// The server nests question material in its relational row shapes:
// a round's tossup and bonus may arrive wrapped in packet-join objects
// ({number, tossup: {...}} / {number, bonus: {...}}), with category
// data hanging off a subcategory object. These transforms flatten that
// nesting into the shapes the rest of the client works with, ordering
// bonus parts by their explicit number field and falling back to array
// position when the field is absent.

type wireCategory struct {
	Name string `json:"name"`
}

type wireSubcategory struct {
	Name     string        `json:"name"`
	Category *wireCategory `json:"category"`
}

type wireTossup struct {
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	Subcategory *wireSubcategory `json:"subcategory"`
	Tossup      *wireTossup      `json:"tossup"`
}

type wireBonusPart struct {
	Number    int            `json:"number"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	BonusPart *wireBonusPart `json:"bonusPart"`
}

type wireBonus struct {
	ID          int              `json:"id"`
	Preamble    string           `json:"preamble"`
	BonusParts  []wireBonusPart  `json:"bonusParts"`
	Subcategory *wireSubcategory `json:"subcategory"`
	Bonus       *wireBonus       `json:"bonus"`
}

type wireRound struct {
	RoundState             game.RoundState        `json:"roundState"`
	RoundNumber            int                    `json:"roundNumber"`
	Category               string                 `json:"category"`
	Subcategory            string                 `json:"subcategory"`
	Question               string                 `json:"question"`
	Answer                 string                 `json:"answer"`
	CurrentBuzz            *game.Buzz             `json:"currentBuzz"`
	BuzzList               []game.Buzz            `json:"buzzList"`
	ProctorFinishedReading bool                   `json:"proctorFinishedReading"`
	Tossup                 *wireTossup            `json:"tossup"`
	CurrentBonus           json.RawMessage        `json:"currentBonus"`
	CurrentBonusPartIndex  int                    `json:"currentBonusPartIndex"`
	BonusEligibleTeamID    string                 `json:"bonusEligibleTeamId"`
	BonusPartAnswers       []game.BonusPartAnswer `json:"bonusPartAnswers"`
	TossupRemainingSeconds *int                   `json:"tossupRemainingSeconds"`
	BonusRemainingSeconds  *int                   `json:"bonusRemainingSeconds"`
}

// NormalizeRound decodes a server round into the flat client shape.
// A null or absent round yields nil.
func NormalizeRound(raw json.RawMessage) (*game.Round, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var wire wireRound
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode round: %w", err)
	}

	round := &game.Round{
		RoundState:             wire.RoundState,
		RoundNumber:            wire.RoundNumber,
		Category:               wire.Category,
		Subcategory:            wire.Subcategory,
		Question:               wire.Question,
		Answer:                 wire.Answer,
		CurrentBuzz:            wire.CurrentBuzz,
		BuzzList:               wire.BuzzList,
		ProctorFinishedReading: wire.ProctorFinishedReading,
		CurrentBonusPartIndex:  wire.CurrentBonusPartIndex,
		BonusEligibleTeamID:    wire.BonusEligibleTeamID,
		BonusPartAnswers:       wire.BonusPartAnswers,
		TossupRemainingSeconds: wire.TossupRemainingSeconds,
		BonusRemainingSeconds:  wire.BonusRemainingSeconds,
	}

	if tossup := unwrapTossup(wire.Tossup); tossup != nil {
		if round.Question == "" {
			round.Question = tossup.Question
		}
		if round.Answer == "" {
			round.Answer = tossup.Answer
		}
		category, subcategory := flattenSubcategory(tossup.Subcategory)
		if round.Category == "" {
			round.Category = category
		}
		if round.Subcategory == "" {
			round.Subcategory = subcategory
		}
	}

	bonus, err := NormalizeBonus(wire.CurrentBonus)
	if err != nil {
		return nil, err
	}
	round.CurrentBonus = bonus
	return round, nil
}

// NormalizeBonus decodes a server bonus, unwrapping packet-join nesting
// and ordering parts by their number field.
func NormalizeBonus(raw json.RawMessage) (*game.Bonus, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var wire wireBonus
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode bonus: %w", err)
	}

	inner := &wire
	for inner.Bonus != nil {
		inner = inner.Bonus
	}

	category, subcategory := flattenSubcategory(inner.Subcategory)
	bonus := &game.Bonus{
		ID:          inner.ID,
		Preamble:    inner.Preamble,
		Category:    category,
		Subcategory: subcategory,
		BonusParts:  flattenBonusParts(inner.BonusParts),
	}
	return bonus, nil
}

func normalizeRounds(raws []json.RawMessage) ([]game.Round, error) {
	if raws == nil {
		return nil, nil
	}
	rounds := make([]game.Round, 0, len(raws))
	for _, raw := range raws {
		round, err := NormalizeRound(raw)
		if err != nil {
			return nil, err
		}
		if round != nil {
			rounds = append(rounds, *round)
		}
	}
	return rounds, nil
}

func flattenBonusParts(parts []wireBonusPart) []game.BonusPart {
	out := make([]game.BonusPart, 0, len(parts))
	ordered := false
	for i, part := range parts {
		inner := &parts[i]
		for inner.BonusPart != nil {
			inner = inner.BonusPart
		}
		number := part.Number
		if number == 0 {
			number = inner.Number
		}
		if number != 0 {
			ordered = true
		}
		out = append(out, game.BonusPart{
			Number:   number,
			Question: inner.Question,
			Answer:   inner.Answer,
		})
	}
	if ordered {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	} else {
		// No order field on the wire, keep array positions.
		for i := range out {
			out[i].Number = i + 1
		}
	}
	return out
}

func unwrapTossup(t *wireTossup) *wireTossup {
	for t != nil && t.Tossup != nil {
		t = t.Tossup
	}
	return t
}

func flattenSubcategory(sc *wireSubcategory) (category, subcategory string) {
	if sc == nil {
		return "", ""
	}
	if sc.Category != nil {
		category = sc.Category.Name
	}
	return category, sc.Name
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
