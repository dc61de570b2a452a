package query

import "strings"

// MatchType is the closed set of match classifications spec.md §4.7 names.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchSemantic MatchType = "semantic"
	MatchNone     MatchType = "none"
)

const fuzzyThreshold = 0.6

// MatchContext classifies how parsed (plus its expansion) matches content:
// exact phrases first, then raw terms, then expansion terms, then a
// Levenshtein-based fuzzy pass against content's words.
func MatchContext(parsed Parsed, expansion []string, content string) MatchType {
	lower := strings.ToLower(content)

	for _, phrase := range parsed.Phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return MatchExact
		}
	}
	for _, term := range parsed.Terms {
		if strings.Contains(lower, term) {
			return MatchExact
		}
	}
	for _, term := range expansion {
		if strings.Contains(lower, term) {
			return MatchExact
		}
	}

	words := strings.Fields(lower)
	for _, term := range parsed.Terms {
		for _, w := range words {
			if fuzzySimilarity(term, w) > fuzzyThreshold {
				return MatchFuzzy
			}
		}
	}

	return MatchNone
}

// fuzzySimilarity converts Levenshtein edit distance to a [0,1] similarity:
// 1 - distance/maxLen. Two empty strings are considered identical (1.0).
func fuzzySimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein computes edit distance between a and b with a single rolling
// row, since no Levenshtein implementation is available anywhere in the
// example corpus (grepped across all retrieved repos and go.sum files) and
// spec.md §4.7 requires it for the fuzzy match pass.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost
			curr[j] = minInt(deletion, minInt(insertion, substitution))
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Capabilities is the matcher-factory output spec.md §4.7 calls a
// "capability flag set per query type": which match strategies are worth
// attempting given what the parsed query actually contains.
type Capabilities struct {
	SupportsExact    bool
	SupportsFuzzy    bool
	SupportsSemantic bool
	SupportsFilters  bool
}

// NewMatcherCapabilities derives a Capabilities set from a Parsed query: a
// query with filters enables filter-aware matching, any terms or phrases
// enable exact/fuzzy matching, and semantic matching is offered whenever
// there is any free text to embed.
func NewMatcherCapabilities(parsed Parsed) Capabilities {
	hasText := len(parsed.Terms) > 0 || len(parsed.Phrases) > 0
	return Capabilities{
		SupportsExact:    hasText,
		SupportsFuzzy:    len(parsed.Terms) > 0,
		SupportsSemantic: hasText,
		SupportsFilters:  len(parsed.Filters) > 0,
	}
}
