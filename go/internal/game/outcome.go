package game

import (
	"bytes"
	"fmt"
)

// BuzzOutcome is the judgment of a buzz. The wire encodes it as the JSON
// values true, false and null; the explicit three-value type keeps
// handling exhaustive instead of hiding the unjudged case in a nil bool.
type BuzzOutcome int

const (
	OutcomeUnjudged BuzzOutcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o BuzzOutcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unjudged"
	}
}

// MarshalJSON encodes the outcome as true, false or null.
func (o BuzzOutcome) MarshalJSON() ([]byte, error) {
	switch o {
	case OutcomeCorrect:
		return []byte("true"), nil
	case OutcomeIncorrect:
		return []byte("false"), nil
	case OutcomeUnjudged:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("invalid buzz outcome: %d", int(o))
	}
}

// UnmarshalJSON decodes true, false or null; anything else is an error.
func (o *BuzzOutcome) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")):
		*o = OutcomeCorrect
	case bytes.Equal(data, []byte("false")):
		*o = OutcomeIncorrect
	case bytes.Equal(data, []byte("null")):
		*o = OutcomeUnjudged
	default:
		return fmt.Errorf("invalid buzz outcome: %s", data)
	}
	return nil
}
