package segment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"yqhp/assistant-engine/pkg/types"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"check the weather and then message Alice", []string{"check the weather", "message Alice"}},
		{"open spotify and also dim the lights", []string{"open spotify", "dim the lights"}},
		{"search for flights then book the cheapest", []string{"search for flights", "book the cheapest"}},
		{"play jazz and set a timer", []string{"play jazz", "set a timer"}},
		{"remind me, and then email Bob", []string{"remind me", "email Bob"}},
		{"just one thing", []string{"just one thing"}},
		{"", nil},
		{"   ", nil},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Split(tc.text), "text=%q", tc.text)
	}
}

func TestSplitLongestConnectorWins(t *testing.T) {
	// "and then" must split as one connector, not leave "then" behind.
	parts := Split("water the plants and then feed the cat")
	assert.Equal(t, []string{"water the plants", "feed the cat"}, parts)
}

func TestSplitDoesNotBreakInsideWords(t *testing.T) {
	// "band" and "sandy" contain connector substrings but no connector words.
	parts := Split("play the band called sandy")
	assert.Equal(t, []string{"play the band called sandy"}, parts)
}

func TestRemainder(t *testing.T) {
	text := "check the weather and then message Alice then create a reminder"

	assert.Equal(t, text, Remainder(text, 0))
	assert.Equal(t, "message Alice then create a reminder", Remainder(text, 1))
	assert.Equal(t, "create a reminder", Remainder(text, 2))
	// More completed steps than clauses clamps to the last clause.
	assert.Equal(t, "create a reminder", Remainder(text, 7))
}

func TestGrammarSegment(t *testing.T) {
	g := NewGrammar()
	tasks := []types.Task{
		{Capability: "web_search", Ordinal: 0},
		{Capability: "web_search", Ordinal: 1},
	}
	text := "search for trains and also search for hotels"

	first, err := g.Segment(context.Background(), text, tasks, 0)
	assert.NoError(t, err)
	assert.Equal(t, "search for trains", first)

	second, err := g.Segment(context.Background(), text, tasks, 1)
	assert.NoError(t, err)
	assert.Equal(t, "search for hotels", second)
}

func TestGrammarSegmentFallsBackToFullText(t *testing.T) {
	g := NewGrammar()
	tasks := []types.Task{
		{Capability: "web_search", Ordinal: 0},
		{Capability: "web_search", Ordinal: 1},
		{Capability: "web_search", Ordinal: 2},
	}
	// Two clauses for three tasks: the grammar cannot assign slices.
	text := "search for trains and search for hotels"

	slice, err := g.Segment(context.Background(), text, tasks, 2)
	assert.NoError(t, err)
	assert.Equal(t, text, slice)
}

// TestSplitRoundTripProperty builds texts from connector-free clauses joined
// by random connectors and checks that Split recovers the clauses.
func TestSplitRoundTripProperty(t *testing.T) {
	words := []string{"check", "weather", "message", "alice", "open", "spotify", "book", "flights", "play", "jazz"}
	connectors := []string{" and then ", " and also ", " then ", " and "}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(t, "clauses")

		clauses := make([]string, n)
		for i := range clauses {
			k := rapid.IntRange(1, 4).Draw(t, "words")
			picked := make([]string, k)
			for j := range picked {
				picked[j] = rapid.SampledFrom(words).Draw(t, "word")
			}
			clauses[i] = strings.Join(picked, " ")
		}

		var sb strings.Builder
		for i, c := range clauses {
			if i > 0 {
				sb.WriteString(rapid.SampledFrom(connectors).Draw(t, "connector"))
			}
			sb.WriteString(c)
		}

		got := Split(sb.String())
		if len(got) != n {
			t.Fatalf("expected %d clauses from %q, got %v", n, sb.String(), got)
		}
		for i := range clauses {
			if got[i] != clauses[i] {
				t.Fatalf("clause %d: expected %q, got %q", i, clauses[i], got[i])
			}
		}
	})
}
