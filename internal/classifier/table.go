package classifier

import "github.com/yourusername/match-predictor/internal/models"

// Label is a label template for one outcome type. Placeholders:
// {home}, {away}, {group}, {type}, {param} (absolute value) and {param:+} (signed).
// Generic is used instead of Text when the quote has no parameter; it may be
// empty for templates that never reference the parameter.
type Label struct {
	Text    string
	Generic string
}

// Rule describes how one feed group code is classified and labeled.
type Rule struct {
	Family models.BetFamily
	// Name is the family's generic label, used for unknown outcome types.
	Name string
	// Prefix is prepended to every rendered label of the group.
	Prefix string
	// Labels maps outcome types to templates.
	Labels map[int]Label
	// Any, when set, labels every outcome type not present in Labels.
	Any *Label
}

// Table maps feed group codes to rules. New families are added by extending
// the table, never by branching in the classifier.
type Table map[int]Rule

var resultLabels = map[int]Label{
	1: {Text: "Win {home}"},
	2: {Text: "Draw"},
	3: {Text: "Win {away}"},
}

// DefaultTable returns the classification table for the LiveFeed group codes.
//
// Handicap side convention: outcome type 7 is the away side's handicap and
// type 8 is the home side's handicap; the signed parameter applies to that side.
func DefaultTable() Table {
	return Table{
		models.GroupFullTimeResult: {
			Family: models.FamilyFullTimeResult,
			Name:   "Match result",
			Labels: resultLabels,
		},
		models.GroupHalfTimeResult: {
			Family: models.FamilyHalfTimeResult,
			Name:   "Half-time result",
			Prefix: "Half-time: ",
			Labels: resultLabels,
		},
		models.GroupHandicap: {
			Family: models.FamilyHandicap,
			Name:   "Handicap",
			Labels: map[int]Label{
				7: {Text: "Handicap {away} {param:+}", Generic: "Handicap {away}"},
				8: {Text: "Handicap {home} {param:+}", Generic: "Handicap {home}"},
			},
		},
		models.GroupOverUnder: {
			Family: models.FamilyOverUnder,
			Name:   "Total goals",
			Labels: map[int]Label{
				9:  {Text: "Over {param} goals", Generic: "Over goals"},
				10: {Text: "Under {param} goals", Generic: "Under goals"},
			},
		},
		models.GroupTeamTotal: {
			Family: models.FamilyTeamTotal,
			Name:   "Team total",
			Labels: map[int]Label{
				13: {Text: "Team total {home}: over {param}", Generic: "Team total {home}: over"},
				14: {Text: "Team total {away}: over {param}", Generic: "Team total {away}: over"},
			},
		},
		models.GroupDoubleChance: {
			Family: models.FamilyDoubleChance,
			Name:   "Double chance",
			Labels: map[int]Label{
				1: {Text: "{home} or {away}"},
				2: {Text: "{home} or draw"},
				3: {Text: "{away} or draw"},
			},
		},
		models.GroupCorrectScore: {
			Family: models.FamilyCorrectScore,
			Name:   "Correct score",
			Any:    &Label{Text: "Correct score {param}", Generic: "Correct score"},
		},
	}
}

// With returns a copy of the table with rule registered for group.
func (t Table) With(group int, rule Rule) Table {
	out := make(Table, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	out[group] = rule
	return out
}
