package feed

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/match-predictor/internal/models"
)

func decodeMatch(t *testing.T, payload string) RawMatch {
	t.Helper()
	var m RawMatch
	require.NoError(t, json.Unmarshal([]byte(payload), &m))
	return m
}

func TestNormalizeEmptyPayload(t *testing.T) {
	quotes := Normalize(decodeMatch(t, `{}`))
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)

	assert.Empty(t, Normalize(RawMatch{}))
}

func TestNormalizePrimaryThenExtendedOrder(t *testing.T) {
	m := decodeMatch(t, `{
		"O1": "Lyon", "O2": "Nice",
		"E": [
			{"G": 1, "T": 3, "C": 4.0},
			{"G": 1, "T": 1, "C": 2.0},
			{"G": 1, "T": 2, "C": 3.5}
		],
		"AE": [
			{"G": 17, "ME": [
				{"T": 10, "P": 2.5, "C": 2.1},
				{"T": 9, "P": 2.5, "C": 1.8}
			]},
			{"G": 2, "ME": [
				{"T": 8, "P": -1.5, "C": 5.0}
			]}
		]
	}`)

	quotes := Normalize(m)
	require.Len(t, quotes, 6)

	want := []struct {
		group, typ int
		price      float64
	}{
		{1, 3, 4.0}, {1, 1, 2.0}, {1, 2, 3.5},
		{17, 10, 2.1}, {17, 9, 1.8},
		{2, 8, 5.0},
	}
	for i, w := range want {
		assert.Equal(t, w.group, quotes[i].Group, "quote %d group", i)
		assert.Equal(t, w.typ, quotes[i].OutcomeType, "quote %d type", i)
		assert.InDelta(t, w.price, quotes[i].Price, 1e-12, "quote %d price", i)
	}
	assert.Nil(t, quotes[0].Param)
	require.NotNil(t, quotes[5].Param)
	assert.InDelta(t, -1.5, *quotes[5].Param, 1e-12)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	m := decodeMatch(t, `{"E":[{"G":1,"T":1,"C":"2.0"},{"G":1,"T":2,"C":3.1}],"AE":[{"G":17,"ME":[{"T":9,"P":"1.5","C":1.4}]}]}`)
	first := Normalize(m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Normalize(m))
	}
}

func TestNormalizeDropsMalformedQuotes(t *testing.T) {
	tests := []struct {
		name  string
		quote string
		keep  bool
	}{
		{"numeric price", `{"G":1,"T":1,"C":2.5}`, true},
		{"string price", `{"G":1,"T":1,"C":"2.5"}`, true},
		{"comma decimal string", `{"G":1,"T":1,"C":"2,5"}`, true},
		{"N/A price", `{"G":1,"T":1,"C":"N/A"}`, false},
		{"empty string price", `{"G":1,"T":1,"C":""}`, false},
		{"missing price", `{"G":1,"T":1}`, false},
		{"null price", `{"G":1,"T":1,"C":null}`, false},
		{"boolean price", `{"G":1,"T":1,"C":true}`, false},
		{"price of exactly one", `{"G":1,"T":1,"C":1.0}`, false},
		{"price below one", `{"G":1,"T":1,"C":0.5}`, false},
		{"negative price", `{"G":1,"T":1,"C":-3}`, false},
		{"missing group", `{"T":1,"C":2.5}`, false},
		{"fractional type", `{"G":1,"T":1.5,"C":2.5}`, false},
		{"string codes", `{"G":"17","T":"9","P":"2.5","C":"1.9"}`, true},
		{"unparsable param", `{"G":17,"T":9,"P":"two","C":1.9}`, false},
		{"null param", `{"G":1,"T":1,"P":null,"C":2.5}`, true},
		{"extra fields ignored", `{"G":1,"T":1,"C":2.5,"CE":1,"B":true}`, true},
		{"exponent price string", `{"G":1,"T":1,"C":"1e30000000"}`, false},
		{"exponent price number", `{"G":1,"T":1,"C":1e30000000}`, false},
		{"tiny exponent price", `{"G":1,"T":1,"C":"25e-30000000"}`, false},
		{"exponent group", `{"G":"1e30000000","T":1,"C":2.0}`, false},
		{"overflowing group", `{"G":18446744073709551617,"T":1,"C":2.0}`, false},
		{"group past int32", `{"G":4294967297,"T":1,"C":2.0}`, false},
		{"large exponent group", `{"G":"1e64","T":1,"C":2.0}`, false},
		{"overflowing type", `{"G":1,"T":18446744073709551617,"C":2.0}`, false},
		{"very long price", `{"G":1,"T":1,"C":"2.` + strings.Repeat("0", 200) + `1"}`, false},
		{"small exponent price", `{"G":1,"T":1,"C":"25e-1"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeMatch(t, `{"E":[`+tt.quote+`]}`)
			quotes := Normalize(m)
			if tt.keep {
				assert.Len(t, quotes, 1)
			} else {
				assert.Empty(t, quotes)
			}
		})
	}
}

func TestNormalizeHugeNumbersAreBounded(t *testing.T) {
	m := decodeMatch(t, `{"E":[
		{"G":1,"T":1,"C":"1e30000000"},
		{"G":1,"T":2,"C":1e30000000},
		{"G":"1e30000000","T":1,"C":2.0},
		{"G":18446744073709551617,"T":1,"C":2.0},
		{"G":1,"T":3,"C":4.0}
	]}`)

	start := time.Now()
	quotes := Normalize(m)

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, quotes, 1, "only the well-formed away quote survives")
	assert.Equal(t, models.GroupFullTimeResult, quotes[0].Group)
	assert.Equal(t, 3, quotes[0].OutcomeType)
}

func TestNumberIntRange(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte(`2147483648`), &n))
	_, ok := n.Int()
	assert.False(t, ok)
	v, ok := n.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(2147483648), v)

	require.NoError(t, json.Unmarshal([]byte(`9223372036854775808`), &n))
	_, ok = n.Int64()
	assert.False(t, ok)

	require.NoError(t, json.Unmarshal([]byte(`"1e5"`), &n))
	i, ok := n.Int()
	assert.True(t, ok)
	assert.Equal(t, 100000, i)
}

func TestNormalizeMalformedPriceDoesNotAffectOthers(t *testing.T) {
	m := decodeMatch(t, `{"E":[
		{"G":1,"T":1,"C":2.0},
		{"G":1,"T":2,"C":"N/A"},
		{"G":1,"T":3,"C":4.0}
	]}`)

	quotes := Normalize(m)
	require.Len(t, quotes, 2)
	assert.Equal(t, 1, quotes[0].OutcomeType)
	assert.Equal(t, 3, quotes[1].OutcomeType)
}

func TestNormalizeExtendedGroupFallback(t *testing.T) {
	m := decodeMatch(t, `{"AE":[
		{"G":"bad","ME":[{"G":62,"T":13,"P":1.5,"C":1.7},{"T":14,"P":1.5,"C":2.2}]},
		{"G":15,"ME":[{"G":99,"T":1,"P":2.1,"C":9.5}]}
	]}`)

	quotes := Normalize(m)
	require.Len(t, quotes, 2)
	assert.Equal(t, 62, quotes[0].Group)
	assert.Equal(t, models.GroupCorrectScore, quotes[1].Group, "group code wins over nested code")
}

func TestNormalizeToleratesBrokenContainers(t *testing.T) {
	m := decodeMatch(t, `{"E":"oops","AE":[42,{"G":17,"ME":{"T":9}},{"G":17,"ME":[null,{"T":9,"P":2.5,"C":1.8}]}]}`)

	quotes := Normalize(m)
	require.Len(t, quotes, 1)
	assert.Equal(t, models.GroupOverUnder, quotes[0].Group)
}

func TestRawMatchAccessors(t *testing.T) {
	m := decodeMatch(t, `{
		"I": 512345678, "O1": " PSG ", "O2": "", "L": "Ligue 1 FR", "LE": "Ligue 1",
		"CN": "Франция", "CE": "France", "S": 1700000000, "TN": "Match terminé",
		"SC": {"FS": {"S1": 2, "S2": "1"}}
	}`)

	assert.Equal(t, "512345678", m.ID())
	assert.Equal(t, "PSG", m.HomeTeam())
	assert.Equal(t, unknownTeam, m.AwayTeam())
	assert.Equal(t, "Ligue 1", m.League())
	require.NotNil(t, m.StartTime())
	assert.Equal(t, int64(1700000000), m.StartTime().Unix())
	assert.True(t, m.MatchesCountry("fra"))
	assert.True(t, m.MatchesCountry("FRANCE"))
	assert.False(t, m.MatchesCountry("spain"))
	assert.False(t, m.MatchesCountry(""))

	home, away := m.FinalScore()
	require.NotNil(t, home)
	require.NotNil(t, away)
	assert.Equal(t, 2, *home)
	assert.Equal(t, 1, *away)
}

func TestRawMatchIsFinished(t *testing.T) {
	tests := []struct {
		status   string
		finished bool
	}{
		{"Terminé", true},
		{"Fin du match", true},
		{"finished", true},
		{"FINISHED", true},
		{"2e mi-temps", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.finished, RawMatch{TN: tt.status}.IsFinished())
		})
	}
}

func TestEnvelopeDecode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"Success":true,"Value":[{"I":1,"E":[{"G":1,"T":1,"C":1.5}]},{"I":2}]}`), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Value, 2)
	assert.Len(t, Normalize(env.Value[0]), 1)
	assert.Empty(t, Normalize(env.Value[1]))
}

func TestNumberMarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NewNumber(1.85)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.85,"b":null}`, string(data))
}
