package models

import "fmt"

// Feed group codes for the market families the engine understands.
const (
	GroupFullTimeResult = 1
	GroupHandicap       = 2
	GroupDoubleChance   = 3
	GroupHalfTimeResult = 8
	GroupCorrectScore   = 15
	GroupOverUnder      = 17
	GroupTeamTotal      = 62
)

// Quote is one priced betting outcome decoded from the feed.
// Price is always > 1.0; the feed normalizer drops anything else.
type Quote struct {
	Group       int      `json:"group"`
	OutcomeType int      `json:"outcome_type"`
	Param       *float64 `json:"param,omitempty"`
	Price       float64  `json:"price"`
}

// HasParam reports whether the quote carries a market parameter.
func (q Quote) HasParam() bool {
	return q.Param != nil
}

// ParamValue returns the parameter or 0 when absent.
func (q Quote) ParamValue() float64 {
	if q.Param == nil {
		return 0
	}
	return *q.Param
}

func (q Quote) String() string {
	if q.Param == nil {
		return fmt.Sprintf("G%d/T%d @ %.3f", q.Group, q.OutcomeType, q.Price)
	}
	return fmt.Sprintf("G%d/T%d(%g) @ %.3f", q.Group, q.OutcomeType, *q.Param, q.Price)
}

// BetFamily is the semantic family a quote belongs to.
type BetFamily int

const (
	FamilyUnclassified BetFamily = iota
	FamilyFullTimeResult
	FamilyHalfTimeResult
	FamilyHandicap
	FamilyOverUnder
	FamilyDoubleChance
	FamilyCorrectScore
	FamilyTeamTotal
)

var familyNames = map[BetFamily]string{
	FamilyUnclassified:   "unclassified",
	FamilyFullTimeResult: "full_time_result",
	FamilyHalfTimeResult: "half_time_result",
	FamilyHandicap:       "handicap",
	FamilyOverUnder:      "over_under",
	FamilyDoubleChance:   "double_chance",
	FamilyCorrectScore:   "correct_score",
	FamilyTeamTotal:      "team_total",
}

func (f BetFamily) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return familyNames[FamilyUnclassified]
}

// MarshalText encodes the family by name so JSON output stays readable.
func (f BetFamily) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a family name; unknown names map to FamilyUnclassified.
func (f *BetFamily) UnmarshalText(text []byte) error {
	*f = FamilyUnclassified
	for family, name := range familyNames {
		if name == string(text) {
			*f = family
			break
		}
	}
	return nil
}

// IsResultMarket reports whether the family is one of the two 1X2 markets.
func (f BetFamily) IsResultMarket() bool {
	return f == FamilyFullTimeResult || f == FamilyHalfTimeResult
}

// Outcome identifies the side of a 1X2 market.
type Outcome int

const (
	OutcomeNone Outcome = 0
	OutcomeHome Outcome = 1
	OutcomeDraw Outcome = 2
	OutcomeAway Outcome = 3
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHome:
		return "home"
	case OutcomeDraw:
		return "draw"
	case OutcomeAway:
		return "away"
	default:
		return "none"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "home":
		*o = OutcomeHome
	case "draw":
		*o = OutcomeDraw
	case "away":
		*o = OutcomeAway
	case "none", "":
		*o = OutcomeNone
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Rank returns the canonical tie-break position: Home, Draw, Away, then anything else.
func (o Outcome) Rank() int {
	switch o {
	case OutcomeHome, OutcomeDraw, OutcomeAway:
		return int(o)
	default:
		return 4
	}
}

// LabeledQuote is a quote after classification, as shown in "all betting options" displays.
type LabeledQuote struct {
	Quote
	Family BetFamily `json:"family"`
	Label  string    `json:"label"`
}
