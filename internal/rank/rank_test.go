package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   string
	Text string
}

func TestRank_SortsDescendingByScore(t *testing.T) {
	t.Parallel()

	items := []doc{{ID: "low", Text: "irrelevant"}, {ID: "high", Text: "machine learning"}}
	scoreFn := func(d doc, query string) Factors {
		return Factors{FuzzyScore: FuzzyScore(d.Text, query)}
	}

	results := Rank(items, "machine learning", scoreFn, Options{Weights: Weights{"fuzzyScore": 1}})

	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Item.ID)
}

func TestRank_MinScoreDropsItems(t *testing.T) {
	t.Parallel()

	items := []doc{{ID: "a", Text: "apple"}, {ID: "b", Text: "banana"}}
	scoreFn := func(d doc, query string) Factors {
		return Factors{FuzzyScore: FuzzyScore(d.Text, query)}
	}

	results := Rank(items, "apple", scoreFn, Options{
		Weights:  Weights{"fuzzyScore": 1},
		MinScore: 0.5,
	})

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Item.ID)
}

func TestRank_EqualRawScoresYieldOneUnderMinMax(t *testing.T) {
	t.Parallel()

	items := []doc{{ID: "a"}, {ID: "b"}}
	scoreFn := func(d doc, query string) Factors {
		return Factors{FuzzyScore: 0.5}
	}

	results := Rank(items, "q", scoreFn, Options{Weights: Weights{"fuzzyScore": 1}})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 1.0, r.Score)
	}
}

func TestRank_ExplanationIncludesFactorNames(t *testing.T) {
	t.Parallel()

	items := []doc{{ID: "a", Text: "hello world"}}
	scoreFn := func(d doc, query string) Factors {
		return Factors{FuzzyScore: FuzzyScore(d.Text, query), TfIdfScore: 0.4}
	}

	results := Rank(items, "hello", scoreFn, Options{
		Weights: Weights{"fuzzyScore": 0.6, "tfIdfScore": 0.4},
		Explain: true,
	})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Explanation, "fuzzyScore=")
	assert.Contains(t, results[0].Explanation, "tfIdfScore=")
}

func TestClampFactors_OutOfRangeValuesAreClamped(t *testing.T) {
	t.Parallel()

	f := clampFactors(Factors{TfIdfScore: 5, FuzzyScore: -3, Extra: map[string]float64{"x": 2}})

	assert.Equal(t, 1.0, f.TfIdfScore)
	assert.Equal(t, 0.0, f.FuzzyScore)
	assert.Equal(t, 1.0, f.Extra["x"])
}

func TestFuzzyScore_FullSubstringMatchIsOne(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, FuzzyScore("the quick brown fox", "quick brown"))
}

func TestFuzzyScore_PartialTermMatch(t *testing.T) {
	t.Parallel()

	score := FuzzyScore("quick fox", "quick brown fox")
	assert.InDelta(t, 2.0/3.0, score, 0.0001)
}

func TestAstRelevance_ZeroWhenNoNodeKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, AstRelevance("", "Foo", "foo"))
}

func TestAstRelevance_UsesMaxOfKindAndNameMatch(t *testing.T) {
	t.Parallel()

	score := AstRelevance("function", "ComputeEmbeddings", "compute embeddings")
	assert.Equal(t, 1.0, score)
}

func TestSymbolGraph_DefinitionProximityDecaysWithDistance(t *testing.T) {
	t.Parallel()

	g := NewSymbolGraph()
	g.AddSymbol("a")
	g.AddSymbol("b")
	g.AddSymbol("c")
	g.AddReference("a", "b")
	g.AddReference("b", "c")

	assert.Equal(t, 1.0, g.DefinitionProximity("a", "a"))
	assert.Greater(t, g.DefinitionProximity("a", "b"), g.DefinitionProximity("a", "c"))
	assert.Equal(t, 0.0, g.DefinitionProximity("c", "a"))
}
