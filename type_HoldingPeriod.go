package costbasis

import (
	"fmt"

	"github.com/etnz/costbasis/date"
)

// LongTermThresholdDays is the number of calendar days after which a lot is
// held long-term. A lot held for exactly that many days is long-term.
const LongTermThresholdDays = 365

// HoldingPeriod classifies a lot for tax purposes.
type HoldingPeriod int

const (
	// ShortTerm lots have been held for less than LongTermThresholdDays.
	ShortTerm HoldingPeriod = iota
	// LongTerm lots have been held for LongTermThresholdDays or more.
	LongTerm
)

func (p HoldingPeriod) String() string {
	switch p {
	case ShortTerm:
		return "short-term"
	case LongTerm:
		return "long-term"
	default:
		return "unknown"
	}
}

// ParseHoldingPeriod parses a string into a HoldingPeriod.
func ParseHoldingPeriod(s string) (HoldingPeriod, error) {
	switch s {
	case "short-term", "short":
		return ShortTerm, nil
	case "long-term", "long":
		return LongTerm, nil
	default:
		return 0, fmt.Errorf("unknown holding period: %q", s)
	}
}

// Classify returns the holding period of a lot acquired on 'acquired' as of 'asOf'.
//
// Lots acquired after asOf have a negative holding duration and are short-term.
func Classify(acquired, asOf date.Date) HoldingPeriod {
	if date.DaysBetween(acquired, asOf) >= LongTermThresholdDays {
		return LongTerm
	}
	return ShortTerm
}
