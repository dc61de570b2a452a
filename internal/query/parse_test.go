package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_ExtractsPhrasesExclusionsAndFilters(t *testing.T) {
	t.Parallel()

	p := ParseQuery(`"exact phrase" -excluded type:function remaining`)

	assert.Equal(t, []string{"exact phrase"}, p.Phrases)
	assert.Equal(t, []string{"excluded"}, p.Exclusions)
	assert.Equal(t, "function", p.Filters["type"])
	assert.Equal(t, []string{"remaining"}, p.Terms)
}

func TestParseQuery_RemovesStopWordsFromFreeTerms(t *testing.T) {
	t.Parallel()

	p := ParseQuery("the quick fox and the lazy dog")

	assert.NotContains(t, p.Terms, "the")
	assert.NotContains(t, p.Terms, "and")
	assert.Contains(t, p.Terms, "quick")
	assert.Contains(t, p.Terms, "fox")
}

func TestParseQuery_StopWordsInPhraseAreKept(t *testing.T) {
	t.Parallel()

	p := ParseQuery(`"the quick fox"`)

	require.Len(t, p.Phrases, 1)
	assert.Equal(t, "the quick fox", p.Phrases[0])
}

func TestSerialize_RoundTripsThroughParseQuery(t *testing.T) {
	t.Parallel()

	original := ParseQuery(`"exact phrase" -excluded type:function remaining`)

	reparsed := ParseQuery(Serialize(original))

	assert.Equal(t, original, reparsed)
}

func TestSerialize_RoundTripsWithNoPhrasesOrFilters(t *testing.T) {
	t.Parallel()

	original := ParseQuery("quick fox -lazy")

	reparsed := ParseQuery(Serialize(original))

	assert.Equal(t, original, reparsed)
}

func TestExpandQuery_AddsSynonymsAndStems(t *testing.T) {
	t.Parallel()

	p := ParseQuery("function running")
	expanded := ExpandQuery(p)

	assert.Contains(t, expanded, "function")
	assert.Contains(t, expanded, "func")
	assert.Contains(t, expanded, "run")
}

func TestNaiveStem_DoesNotStripDoubleS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "class", naiveStem("class"))
	assert.Equal(t, "pass", naiveStem("pass"))
}

func TestNaiveStem_StripsIngEdAndS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "runn", naiveStem("running"))
	assert.Equal(t, "walk", naiveStem("walked"))
	assert.Equal(t, "cat", naiveStem("cats"))
}

func TestMatchContext_ExactPhraseWins(t *testing.T) {
	t.Parallel()

	p := ParseQuery(`"hello world"`)
	mt := MatchContext(p, nil, "say hello world to everyone")

	assert.Equal(t, MatchExact, mt)
}

func TestMatchContext_FuzzyOnTypo(t *testing.T) {
	t.Parallel()

	p := ParseQuery("function")
	mt := MatchContext(p, nil, "this has a functoin typo in it")

	assert.Equal(t, MatchFuzzy, mt)
}

func TestMatchContext_NoneWhenNothingMatches(t *testing.T) {
	t.Parallel()

	p := ParseQuery("zzzznonexistentword")
	mt := MatchContext(p, nil, "completely unrelated content here")

	assert.Equal(t, MatchNone, mt)
}

func TestLevenshtein_IdenticalStringsAreZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, levenshtein("hello", "hello"))
	assert.Equal(t, 5, levenshtein("", "hello"))
	assert.Equal(t, 1, levenshtein("hello", "hallo"))
}

func TestNewMatcherCapabilities_ReflectsParsedContent(t *testing.T) {
	t.Parallel()

	withFilter := NewMatcherCapabilities(ParseQuery("type:function"))
	assert.True(t, withFilter.SupportsFilters)
	assert.False(t, withFilter.SupportsFuzzy)

	withTerms := NewMatcherCapabilities(ParseQuery("hello"))
	assert.True(t, withTerms.SupportsFuzzy)
	assert.True(t, withTerms.SupportsExact)
}
